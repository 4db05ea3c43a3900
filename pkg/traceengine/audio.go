package traceengine

import (
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/ebiten/v2/audio"
	mp3 "github.com/hajimehoshi/go-mp3"
)

// SoundtrackPlayer loops random MP3s from a directory and reports track
// metadata to the HUD. Shutdown fades out instead of cutting the stream.
type SoundtrackPlayer struct {
	AudioDir   string
	OnMetadata func(song, artist string)

	audioContext *audio.Context
	stopChan     chan struct{}
	stoppedChan  chan struct{}
	isStopping   bool
}

func NewSoundtrackPlayer(dir string, onMetadata func(song, artist string)) *SoundtrackPlayer {
	return &SoundtrackPlayer{
		AudioDir:    dir,
		OnMetadata:  onMetadata,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

func (p *SoundtrackPlayer) Shutdown() {
	log.Println("Soundtrack shutting down with fade-out...")
	p.isStopping = true
	close(p.stopChan)
	<-p.stoppedChan
	log.Println("Soundtrack stopped.")
}

func (p *SoundtrackPlayer) Start() {
	go func() {
		defer close(p.stoppedChan)
		for {
			select {
			case <-p.stopChan:
				return
			default:
			}

			var tracks []string
			err := filepath.Walk(p.AudioDir, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".mp3") {
					tracks = append(tracks, path)
				}
				return nil
			})

			if err != nil || len(tracks) == 0 {
				if err != nil {
					log.Printf("Failed to read audio directory: %v", err)
				} else {
					log.Println("No MP3 files found in audio directory.")
				}
				select {
				case <-time.After(5 * time.Second):
				case <-p.stopChan:
					return
				}
				continue
			}

			path := tracks[rand.Intn(len(tracks))]
			if err := p.playTrack(path); err != nil {
				log.Printf("Failed to play track %s: %v", path, err)
				select {
				case <-time.After(5 * time.Second):
				case <-p.stopChan:
					return
				}
			}

			if p.isStopping {
				return
			}
		}
	}()
}

func (p *SoundtrackPlayer) playTrack(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var artist, song string
	if m, err := tag.ReadFrom(f); err == nil {
		artist = m.Artist()
		song = m.Title()
	}
	if song == "" {
		fullTitle := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		song = fullTitle
		if parts := strings.SplitN(fullTitle, " - ", 2); len(parts) == 2 {
			song, artist = parts[0], parts[1]
		}
	}
	if p.OnMetadata != nil {
		p.OnMetadata(song, artist)
	}

	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return err
	}

	if p.audioContext == nil {
		p.audioContext = audio.NewContext(44100)
	}
	player, err := p.audioContext.NewPlayer(d)
	if err != nil {
		return err
	}
	player.Play()
	log.Printf("Playing: %s", path)

	fadeDuration := 5 * time.Second
	totalBytes := d.Length()
	duration := time.Duration(totalBytes) * time.Second / time.Duration(d.SampleRate()*4)
	startTime := time.Now()
	var stoppingAt time.Time
	for player.IsPlaying() {
		if p.isStopping && stoppingAt.IsZero() {
			stoppingAt = time.Now()
		}

		elapsed := time.Since(startTime)
		remaining := duration - elapsed
		vol := 1.0
		if remaining <= fadeDuration {
			vol = float64(remaining) / float64(fadeDuration)
		}
		if !stoppingAt.IsZero() {
			stopElapsed := time.Since(stoppingAt)
			stopVol := 1.0 - (float64(stopElapsed) / float64(fadeDuration))
			if stopVol < vol {
				vol = stopVol
			}
			if stopVol <= 0 {
				break
			}
		}
		if vol < 0 {
			vol = 0
		}
		player.SetVolume(vol)

		if remaining <= 0 {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	player.Close()
	return nil
}
