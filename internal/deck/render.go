package deck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// CropBox is a pixel rectangle (left, upper, right, lower) applied to each
// rendered page, in the coordinates of the rendered image.
type CropBox struct {
	Left, Upper, Right, Lower int
}

// ParseCropBox parses "left,upper,right,lower". An empty string means no
// crop and returns nil.
func ParseCropBox(s string) (*CropBox, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("crop box %q: want left,upper,right,lower", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("crop box %q: %w", s, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("crop box %q: negative coordinate", s)
		}
		v[i] = n
	}
	box := &CropBox{Left: v[0], Upper: v[1], Right: v[2], Lower: v[3]}
	if box.Right <= box.Left || box.Lower <= box.Upper {
		return nil, fmt.Errorf("crop box %q: empty rectangle", s)
	}
	return box, nil
}

func (c CropBox) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", c.Left, c.Upper, c.Right, c.Lower)
}

// pdftoppmArgs returns the crop flags. pdftoppm clamps the area to the
// rendered page itself.
func (c CropBox) pdftoppmArgs() []string {
	return []string{
		"-x", strconv.Itoa(c.Left),
		"-y", strconv.Itoa(c.Upper),
		"-W", strconv.Itoa(c.Right - c.Left),
		"-H", strconv.Itoa(c.Lower - c.Upper),
	}
}

// ImageName is the file name of the rendered image for a 1-based slide.
func ImageName(index int) string {
	return fmt.Sprintf("slide_%d.png", index)
}

// PageCount returns the number of pages in a PDF.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	n, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

// RenderOptions tune page rendering.
type RenderOptions struct {
	DPI     int      // 150 when zero
	Crop    *CropBox // nil renders whole pages
	Workers int      // pages render one at a time unless > 1
}

// RenderPages renders every page of pdfPath into outDir as slide_{n}.png
// and returns the page count.
func RenderPages(ctx context.Context, pdfPath, outDir string, opts RenderOptions) (int, error) {
	if opts.DPI <= 0 {
		opts.DPI = 150
	}

	pageCount, err := PageCount(pdfPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("create image dir: %w", err)
	}

	err = renderAll(pageCount, opts.Workers, func(page int) error {
		return renderPage(ctx, pdfPath, outDir, page, opts)
	})
	if err != nil {
		return 0, err
	}
	return pageCount, nil
}

// renderAll calls render for pages 1..pageCount. With one worker pages
// render in order and the first failure stops the loop; more workers share
// a semaphore and the lowest failing page is reported.
func renderAll(pageCount, workers int, render func(page int) error) error {
	if workers <= 1 {
		for page := 1; page <= pageCount; page++ {
			if err := render(page); err != nil {
				return fmt.Errorf("render page %d: %w", page, err)
			}
		}
		return nil
	}

	errs := make([]error, pageCount+1)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for page := 1; page <= pageCount; page++ {
		sem <- struct{}{}
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[page] = render(page)
		}(page)
	}
	wg.Wait()

	for page := 1; page <= pageCount; page++ {
		if errs[page] != nil {
			return fmt.Errorf("render page %d: %w", page, errs[page])
		}
	}
	return nil
}

func renderPage(ctx context.Context, pdfPath, outDir string, page int, opts RenderOptions) error {
	tmpDir, err := os.MkdirTemp("", "deckreport-page-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	pageStr := strconv.Itoa(page)
	args := []string{
		"-png",
		"-f", pageStr,
		"-l", pageStr,
		"-r", strconv.Itoa(opts.DPI),
		"-singlefile",
	}
	if opts.Crop != nil {
		args = append(args, opts.Crop.pdftoppmArgs()...)
	}
	args = append(args, pdfPath, prefix)

	output, err := exec.CommandContext(ctx, "pdftoppm", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("pdftoppm failed: %w (output: %s)", err, string(output))
	}

	// -singlefile writes <prefix>.png
	data, err := os.ReadFile(prefix + ".png")
	if err != nil {
		return fmt.Errorf("pdftoppm did not create expected output: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, ImageName(page)), data, 0o644); err != nil {
		return fmt.Errorf("write page image: %w", err)
	}
	return nil
}
