package ffmpeg

import "testing"

func TestSwapExt(t *testing.T) {
	cases := []struct {
		path, ext, want string
	}{
		{"/tmp/abc.webm", "mp4", "/tmp/abc.mp4"},
		{"/tmp/abc.m4a", "mp3", "/tmp/abc.mp3"},
		{"/tmp/abc_2.webm", "mp4", "/tmp/abc_2.mp4"},
		{"/tmp/noext", "mp4", "/tmp/noext.mp4"},
	}
	for _, c := range cases {
		if got := swapExt(c.path, c.ext); got != c.want {
			t.Errorf("swapExt(%q, %q) = %q, want %q", c.path, c.ext, got, c.want)
		}
	}
}
