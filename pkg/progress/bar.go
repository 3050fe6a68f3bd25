package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const barWidth = 20

type bar struct {
	pb *progressbar.ProgressBar
}

// Bar renders one textual byte progress bar per transfer on w.
func Bar(w io.Writer) Factory {
	return func(description string, total int64) Reporter {
		if total <= 0 {
			total = -1
		}
		return &bar{
			pb: progressbar.NewOptions64(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription(description),
				progressbar.OptionSetWidth(barWidth),
				progressbar.OptionShowBytes(true),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(w)
				}),
			),
		}
	}
}

func (b *bar) OnProgress(transferred, total int64) {
	if total > 0 && b.pb.GetMax64() != total {
		b.pb.ChangeMax64(total)
	}
	_ = b.pb.Set64(transferred)
}

func (b *bar) Finish() {
	_ = b.pb.Finish()
}
