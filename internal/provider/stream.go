package provider

import (
	"context"
	"io"
	"strings"
	"time"
)

const (
	wordPacing   = 50 * time.Millisecond
	cannedPacing = 100 * time.Millisecond
)

// Fragments obtains the fragment sequence for a provider. Natively streaming
// providers are consumed directly; the rest invoke once and re-chunk the
// whole completion word by word so the gateway never has to care which kind
// it is driving.
func Fragments(ctx context.Context, p Provider, prompt string) (FragmentStream, error) {
	if s, ok := p.(Streamer); ok {
		return s.Stream(ctx, prompt)
	}

	content, err := p.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return newWordStream(ctx, content), nil
}

// sliceStream paces out a fixed fragment list, honouring cancellation.
type sliceStream struct {
	ctx       context.Context
	fragments []string
	next      int
	pacing    time.Duration
}

func newWordStream(ctx context.Context, content string) *sliceStream {
	words := strings.Fields(content)
	fragments := make([]string, 0, len(words))
	for _, word := range words {
		fragments = append(fragments, word+" ")
	}
	return &sliceStream{ctx: ctx, fragments: fragments, pacing: wordPacing}
}

func newCannedStream(ctx context.Context, fragments []string) *sliceStream {
	return &sliceStream{ctx: ctx, fragments: append([]string(nil), fragments...), pacing: cannedPacing}
}

func (s *sliceStream) Recv() (string, error) {
	if s.next >= len(s.fragments) {
		return "", io.EOF
	}

	if s.next > 0 && s.pacing > 0 {
		select {
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		case <-time.After(s.pacing):
		}
	}

	fragment := s.fragments[s.next]
	s.next++
	return fragment, nil
}

func (s *sliceStream) Close() {}
