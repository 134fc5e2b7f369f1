// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/bureau-foundation/bunny/lib/asset"
	"github.com/bureau-foundation/bunny/lib/bundle"
	"github.com/bureau-foundation/bunny/lib/bunny"
	"github.com/bureau-foundation/bunny/lib/host"
	"github.com/bureau-foundation/bunny/lib/testutil"
	"github.com/bureau-foundation/bunny/lib/tick"
)

const frame = 16 * time.Millisecond

// recordingPlayer keeps every voice it is asked to play.
type recordingPlayer struct {
	mu     sync.Mutex
	voices []Voice
}

func (p *recordingPlayer) Play(voice Voice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voices = append(p.voices, voice)
}

func (p *recordingPlayer) played() []Voice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Voice(nil), p.voices...)
}

type memoryFetcher struct {
	bundles map[string][]byte
}

func (f *memoryFetcher) Fetch(url string) bunny.FetchOperation {
	return &memoryFetch{data: f.bundles[url]}
}

type memoryFetch struct{ data []byte }

func (o *memoryFetch) Done() bool { return true }
func (o *memoryFetch) Release()   {}
func (o *memoryFetch) Result() ([]byte, error) {
	if o.data == nil {
		return nil, errors.New("HTTP 404")
	}
	return o.data, nil
}

// soundBundle builds a bundle with two clips and one group of each
// kind over them.
func soundBundle(t *testing.T) []byte {
	t.Helper()
	samples := make([]int16, 441)
	for i := range samples {
		samples[i] = 8000
	}
	clip := testutil.PCM16WAV(44100, samples)

	builder := bundle.NewBuilder("sfx")
	add := func(name, kind string, source []byte) {
		payload, err := asset.Compile(kind, source)
		if err != nil {
			t.Fatalf("Compile(%s): %v", name, err)
		}
		if err := builder.Add(name, kind, payload, bundle.CompressionLZ4); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
	}
	add("Laser1", asset.KindClip, clip)
	add("Laser2", asset.KindClip, clip)
	add("LaserGroup", asset.KindSfx, []byte(`{
		"clips": ["Laser1", "Laser2"],
		"volume": {"min": 0.5, "max": 0.75},
		"pitch": {"min": 0.9, "max": 1.1},
		"priority": 3,
	}`))
	add("EngineHum", asset.KindLoop, []byte(`{"clips": ["Laser1"], "volume": {"min": 0.2, "max": 1}, "pitch": {"min": 0.8, "max": 1.2}}`))
	add("Theme", asset.KindMusic, []byte(`{"clips": ["Laser2", "Laser1"], "volume": {"min": 0.6, "max": 0.6}}`))
	add("Credits", asset.KindText, []byte("rabbits"))

	encoded, err := builder.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}
	return encoded
}

type harness struct {
	manager   *Manager
	scheduler *tick.Scheduler
	player    *recordingPlayer
	logs      *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	registry := host.NewRegistry()
	loader, err := bunny.NewLoader(bunny.Config{
		Fetcher: &memoryFetcher{bundles: map[string][]byte{
			"/bundles/sfx": soundBundle(t),
		}},
		Parser:   host.NewParser(host.ParserConfig{Registry: registry, Logger: logger}),
		Registry: registry,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	scheduler := tick.New(logger)
	player := &recordingPlayer{}
	manager, err := New(Config{
		Loader:    loader,
		Scheduler: scheduler,
		Player:    player,
		BasePath:  "/bundles",
		Rand:      rand.New(rand.NewPCG(1, 2)),
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &harness{manager: manager, scheduler: scheduler, player: player, logs: logs}
}

// settle ticks the scheduler until it has no tasks left.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	testutil.Eventually(t, 5*time.Second, func() bool {
		h.scheduler.Tick(frame)
		return h.scheduler.Len() == 0
	}, "scheduler to drain")
}

func TestPlaySfx(t *testing.T) {
	h := newHarness(t)
	h.manager.Play(bunny.Ref[*asset.SfxGroup]("sfx", "lasergroup"))
	h.settle(t)

	voices := h.player.played()
	if len(voices) != 1 {
		t.Fatalf("played %d voices, want 1", len(voices))
	}
	voice := voices[0]
	if voice.Clip == nil || !strings.HasPrefix(voice.Clip.Name, "Laser") {
		t.Errorf("Clip = %+v", voice.Clip)
	}
	if voice.Volume < 0.5 || voice.Volume > 0.75 {
		t.Errorf("Volume = %v, want within [0.5, 0.75]", voice.Volume)
	}
	if voice.Pitch < 0.9 || voice.Pitch > 1.1 {
		t.Errorf("Pitch = %v, want within [0.9, 1.1]", voice.Pitch)
	}
	if voice.Priority != 3 || voice.Loop || voice.Bus != BusSfx {
		t.Errorf("voice = %+v", voice)
	}
}

func TestPlayLoopFollowsFader(t *testing.T) {
	h := newHarness(t)
	fader := NewFader(0, 10)
	fader.SetTarget(1)
	h.manager.PlayLoop(bunny.Ref[*asset.LoopGroup]("sfx", "EngineHum"), fader)

	testutil.Eventually(t, 5*time.Second, func() bool {
		h.scheduler.Tick(frame)
		return len(h.player.played()) == 1
	}, "loop to start")

	voice := h.player.played()[0]
	if !voice.Loop || voice.Fade != fader || voice.Volume != 0.2 || voice.Pitch != 0.8 {
		t.Errorf("voice = %+v", voice)
	}

	h.scheduler.Tick(50 * time.Millisecond)
	if got := fader.Value(); got <= 0 {
		t.Errorf("fader did not move: %v", got)
	}

	fader.Stop()
	h.settle(t)
	if !fader.Finished() {
		t.Error("fader not finished after Stop")
	}
}

func TestPlayMusic(t *testing.T) {
	h := newHarness(t)
	h.manager.PlayMusic(bunny.Ref[*asset.MusicGroup]("sfx", "Theme"))
	h.settle(t)

	voices := h.player.played()
	if len(voices) != 1 {
		t.Fatalf("played %d voices, want 1", len(voices))
	}
	if voices[0].Clip.Name != "Laser2" || voices[0].Volume != 0.6 || !voices[0].Loop || voices[0].Bus != BusMusic {
		t.Errorf("voice = %+v", voices[0])
	}
}

func TestLoadFailuresAreLogged(t *testing.T) {
	h := newHarness(t)
	h.manager.Play(bunny.Ref[*asset.SfxGroup]("missing", "Laser"))
	h.manager.Play(bunny.Ref[*asset.SfxGroup]("sfx", "NoSuchGroup"))
	h.manager.PlayMusic(bunny.Ref[*asset.MusicGroup]("sfx", "Credits"))
	h.settle(t)

	if voices := h.player.played(); len(voices) != 0 {
		t.Fatalf("played %d voices, want none", len(voices))
	}
	logs := h.logs.String()
	if strings.Count(logs, `msg="failed to load SFX"`) != 2 {
		t.Errorf("expected two SFX failures in:\n%s", logs)
	}
	if !strings.Contains(logs, `msg="failed to load Music"`) || !strings.Contains(logs, "mismatched=true") {
		t.Errorf("expected a mismatched Music failure in:\n%s", logs)
	}
}

func TestDisabled(t *testing.T) {
	h := newHarness(t)
	h.manager.Disabled = true
	h.manager.Play(bunny.Ref[*asset.SfxGroup]("sfx", "LaserGroup"))
	h.manager.PlayMusic(bunny.Ref[*asset.MusicGroup]("sfx", "Theme"))
	if h.scheduler.Len() != 0 {
		t.Errorf("disabled manager spawned %d tasks", h.scheduler.Len())
	}

	h.manager.Disabled = false
	h.manager.Play(bunny.Ref[*asset.SfxGroup]("sfx", "LaserGroup"))
	h.manager.Disabled = true
	h.settle(t)
	if voices := h.player.played(); len(voices) != 0 {
		t.Errorf("played %d voices after disabling mid-load", len(voices))
	}
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New with empty config succeeded")
	}
}

func TestFader(t *testing.T) {
	fader := NewFader(0.5, 2)
	fader.SetTarget(1)
	fader.Update(100 * time.Millisecond)
	if got := fader.Value(); got < 0.69 || got > 0.71 {
		t.Errorf("Value = %v, want 0.7", got)
	}
	fader.Update(time.Second)
	if got := fader.Value(); got != 1 {
		t.Errorf("Value = %v, want clamped to 1", got)
	}
	if fader.Finished() {
		t.Error("Finished before Stop")
	}
	fader.Stop()
	fader.Update(time.Second)
	if fader.Value() != 0 || !fader.Finished() {
		t.Errorf("Value = %v, Finished = %v after Stop", fader.Value(), fader.Finished())
	}
}

// constantClip returns a clip of n samples at value.
func constantClip(rate beep.SampleRate, n int, value float64) *asset.Clip {
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	buffer := beep.NewBuffer(format)
	remaining := n
	buffer.Append(beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if remaining == 0 {
			return 0, false
		}
		count := min(len(samples), remaining)
		for i := range count {
			samples[i] = [2]float64{value, value}
		}
		remaining -= count
		return count, true
	}))
	return &asset.Clip{Name: "constant", Format: format, Buffer: buffer}
}

func TestMixerPlayer(t *testing.T) {
	player := NewMixerPlayer(44100)
	player.Play(Voice{Clip: constantClip(44100, 100, 0.5), Volume: 1, Pitch: 1})
	player.Play(Voice{Clip: constantClip(44100, 50, 0.25), Volume: 1, Pitch: 1, Bus: BusMusic})
	if player.Voices() != 2 {
		t.Fatalf("Voices = %d, want 2", player.Voices())
	}

	player.SetBusVolume(BusMusic, 2)
	samples := make([][2]float64, 200)
	n, ok := player.Stream(samples)
	if n != 200 || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	if got := samples[10][0]; got < 0.99 || got > 1.01 {
		t.Errorf("mixed sample = %v, want 1.0", got)
	}
	if got := samples[75][0]; got < 0.49 || got > 0.51 {
		t.Errorf("sample after music ended = %v, want 0.5", got)
	}
	if samples[150] != [2]float64{} {
		t.Errorf("sample after all voices ended = %v, want silence", samples[150])
	}
	if player.Err() != nil {
		t.Errorf("Err = %v", player.Err())
	}
}

func TestMixerPlayerFadeEndsVoice(t *testing.T) {
	player := NewMixerPlayer(44100)
	fader := NewFader(1, 1000)
	player.Play(Voice{Clip: constantClip(44100, 10, 1), Volume: 1, Pitch: 1, Loop: true, Fade: fader})

	samples := make([][2]float64, 64)
	player.Stream(samples)
	if samples[40][0] == 0 {
		t.Error("looping voice went silent")
	}

	fader.Stop()
	fader.Update(time.Second)
	player.Stream(samples)
	player.Stream(samples)
	if player.Voices() != 0 {
		t.Errorf("Voices = %d after fade finished, want 0", player.Voices())
	}
}

func TestMixerPlayerSilentVoice(t *testing.T) {
	player := NewMixerPlayer(44100)
	player.Play(Voice{Clip: constantClip(44100, 10, 1), Volume: 0, Pitch: 1})
	player.Play(Voice{})
	samples := make([][2]float64, 10)
	player.Stream(samples)
	if samples[5] != [2]float64{} {
		t.Errorf("silent voice produced %v", samples[5])
	}
}
