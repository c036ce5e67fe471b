package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/insightloop-ai/insightloop/errors"
)

type fakeExecutor struct {
	calls  [][]string
	err    error
	onExec func(name string, args []string)
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	call := append([]string{name}, args...)
	f.calls = append(f.calls, call)
	if f.onExec != nil {
		f.onExec(name, args)
	}
	return "", f.err
}

func TestIsSupported(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"meeting.mp3", true},
		{"meeting.WAV", true},
		{"standup.m4a", true},
		{"recording.mp4", true},
		{"recording.mkv", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noextension", false},
	}

	for _, c := range cases {
		if got := IsSupported(c.path); got != c.want {
			t.Errorf("IsSupported(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestPrepareAudioPassthrough(t *testing.T) {
	exec := &fakeExecutor{}
	p := NewProcessor(exec, t.TempDir(), zap.NewNop())

	path, cleanup, err := p.PrepareAudio(context.Background(), "/data/standup.mp3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if path != "/data/standup.mp3" {
		t.Errorf("expected passthrough path, got %q", path)
	}
	if len(exec.calls) != 0 {
		t.Errorf("expected no external commands for audio input, got %d", len(exec.calls))
	}
}

func TestPrepareAudioExtractsVideo(t *testing.T) {
	workDir := t.TempDir()
	exec := &fakeExecutor{}
	exec.onExec = func(name string, args []string) {
		// ffmpeg writes the output file given as the last argument
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("RIFF"), 0o644); err != nil {
			t.Fatalf("failed to write fake output: %v", err)
		}
	}
	p := NewProcessor(exec, workDir, zap.NewNop())

	path, cleanup, err := p.PrepareAudio(context.Background(), "/data/allhands.mp4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(workDir, "allhands_audio.wav")
	if path != want {
		t.Errorf("expected output %q, got %q", want, path)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected one ffmpeg call, got %d", len(exec.calls))
	}
	call := exec.calls[0]
	if call[0] != "ffmpeg" {
		t.Errorf("expected ffmpeg, got %q", call[0])
	}
	joined := ""
	for _, a := range call {
		joined += a + " "
	}
	for _, flag := range []string{"-vn", "-ar", "16000", "-ac", "1", "pcm_s16le"} {
		found := false
		for _, a := range call {
			if a == flag {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected flag %q in ffmpeg args: %s", flag, joined)
		}
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("cleanup should remove extracted audio, stat err = %v", err)
	}
}

func TestPrepareAudioUnsupported(t *testing.T) {
	p := NewProcessor(&fakeExecutor{}, t.TempDir(), zap.NewNop())

	_, _, err := p.PrepareAudio(context.Background(), "/data/notes.txt")
	if !apperrors.IsCode(err, apperrors.ErrorCode_INPUT) {
		t.Errorf("expected input error code, got %v", err)
	}
}

func TestPrepareAudioFfmpegFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 1")}
	p := NewProcessor(exec, t.TempDir(), zap.NewNop())

	_, _, err := p.PrepareAudio(context.Background(), "/data/allhands.mp4")
	if !apperrors.IsCode(err, apperrors.ErrorCode_INPUT) {
		t.Errorf("expected input error code, got %v", err)
	}
}
