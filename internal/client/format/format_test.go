package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	tests := map[float64]string{
		0:      "0:00",
		5.9:    "0:05",
		65:     "1:05",
		599:    "9:59",
		3600:   "1:00:00",
		3725.4: "1:02:05",
		-3:     "0:00",
	}
	for in, want := range tests {
		assert.Equal(t, want, Duration(in), "Duration(%v)", in)
	}
}

func TestViews(t *testing.T) {
	tests := map[int64]string{
		0:         "0",
		999:       "999",
		1000:      "1.0K",
		1234:      "1.2K",
		999_999:   "1000.0K",
		1_000_000: "1.0M",
		3_460_000: "3.5M",
	}
	for in, want := range tests {
		assert.Equal(t, want, Views(in), "Views(%d)", in)
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Just now"},
		{59 * time.Second, "Just now"},
		{90 * time.Second, "1m ago"},
		{2 * time.Hour, "2h ago"},
		{3 * 24 * time.Hour, "3d ago"},
		{65 * 24 * time.Hour, "2mo ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now))
	}
}

func TestDate(t *testing.T) {
	assert.Equal(t, "Mar 7, 2024", Date(time.Date(2024, 3, 7, 23, 0, 0, 0, time.UTC)))
}

func TestFileSize(t *testing.T) {
	tests := map[int64]string{
		0:         "0 Bytes",
		512:       "512 Bytes",
		1024:      "1 KB",
		1536:      "1.5 KB",
		1 << 20:   "1 MB",
		5 << 20:   "5 MB",
		100 << 20: "100 MB",
		3 << 30:   "3 GB",
		5 << 40:   "5120 GB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileSize(in), "FileSize(%d)", in)
	}
}
