// Package thumbnail derives the fixed-width variants of uploaded images.
package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/storage"
)

var variantsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "files_thumbnail_variants_total",
		Help: "Thumbnail variants by width and outcome (generated, skipped, failed).",
	},
	[]string{"width", "outcome"},
)

// Result lists the widths by what happened to them.
type Result struct {
	Generated []int
	Skipped   []int
	Failed    []int
}

type Generator struct {
	storage storage.Storage
	widths  []int
}

func NewGenerator(s storage.Storage) *Generator {
	return &Generator{storage: s, widths: model.ThumbnailWidths}
}

// Generate writes every missing variant of file. Widths are processed in parallel and a failing
// width never prevents the others; failures are logged and reported in the result only.
func (g *Generator) Generate(ctx context.Context, file *model.File) Result {
	var (
		mu     sync.Mutex
		result Result
	)
	record := func(list *[]int, width int, outcome string) {
		mu.Lock()
		*list = append(*list, width)
		mu.Unlock()
		variantsTotal.WithLabelValues(strconv.Itoa(width), outcome).Inc()
	}

	var wg sync.WaitGroup
	for _, width := range g.widths {
		wg.Go(func() {
			generated, err := g.variant(ctx, file.LocalPath, width)
			switch {
			case err != nil:
				slog.Error("failed to generate thumbnail",
					"file_id", file.ID,
					"width", width,
					"error", err,
				)
				record(&result.Failed, width, "failed")
			case generated:
				record(&result.Generated, width, "generated")
			default:
				record(&result.Skipped, width, "skipped")
			}
		})
	}
	wg.Wait()

	return result
}

// variant produces one width. It reports false when the variant was already present.
func (g *Generator) variant(ctx context.Context, path string, width int) (bool, error) {
	target := model.VariantPath(path, width)

	exists, err := g.storage.Exists(ctx, target)
	if err != nil {
		return false, fmt.Errorf("failed to check variant: %w", err)
	}
	if exists {
		return false, nil
	}

	data, err := g.storage.Read(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to read original: %w", err)
	}

	out, err := Resize(data, width)
	if err != nil {
		return false, err
	}

	if err := g.storage.Write(ctx, target, out); err != nil {
		return false, fmt.Errorf("failed to write variant: %w", err)
	}
	return true, nil
}

// Resize scales the encoded image to width, keeping the aspect ratio, and re-encodes it in
// the source format. Formats imaging cannot write fall back to PNG.
func Resize(data []byte, width int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)

	outFormat, err := imaging.FormatFromExtension(format)
	if err != nil {
		outFormat = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, outFormat); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
