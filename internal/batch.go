package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rm-hull/recursive-gaussian-blur/internal/png"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

type Processor struct {
	startTime time.Time
	endTime   time.Time
	srcDir    string
	dstDir    string
	poolSize  int
	maxJobs   int
	jobs      chan string
	results   chan error
	files     []string
	pipeline  []png.PipelineStage
}

// NewBatch collects every image below srcDir. Each one is run through the
// pipeline and written to the same relative path below dstDir as a PNG.
func NewBatch(srcDir, dstDir string, poolSize int, pipeline ...png.PipelineStage) (*Processor, error) {
	if poolSize < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	startTime := time.Now()

	files, err := findImages(srcDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", srcDir, err)
	}

	log.Printf("Directory %s contains %d images", srcDir, len(files))
	if len(files) == 0 {
		return nil, errors.New("no images to process")
	}

	return &Processor{
		startTime: startTime,
		srcDir:    srcDir,
		dstDir:    dstDir,
		poolSize:  poolSize,
		maxJobs:   -1,
		jobs:      make(chan string),
		results:   make(chan error),
		files:     files,
		pipeline:  pipeline,
	}, nil
}

// Limit caps how many images are dispatched; n <= 0 means all of them.
func (p *Processor) Limit(n int) {
	if n <= 0 {
		n = -1
	}
	p.maxJobs = n
}

// findImages returns the image paths below root, relative to it. Two sources
// that would write the same output file (a.png and a.jpg) are rejected.
func findImages(root string) ([]string, error) {
	files := make([]string, 0)
	outputs := make(map[string]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out := outputName(rel)
		if prev, ok := outputs[out]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", prev, rel, out)
		}
		outputs[out] = rel
		files = append(files, rel)
		return nil
	})
	return files, err
}

func outputName(rel string) string {
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".png"
}

// DispatchJobs sends files to the jobs channel for processing by workers.
// When maxJobs is greater than zero (see Limit), it limits the number of
// jobs dispatched; -1 dispatches all jobs.
func (p *Processor) DispatchJobs() {

	go func() {
		for n, file := range p.files {
			if p.maxJobs > 0 && n >= p.maxJobs {
				break
			}
			p.jobs <- file
		}
		close(p.jobs)
	}()
}

func (p *Processor) StartWorkers() {
	log.Printf("Starting blurring files with pool size: %d", p.poolSize)

	for i := range p.poolSize {
		go p.worker(i)
	}
}

func (p *Processor) worker(i int) {
	log.Printf("Worker %d started", i)
	for file := range p.jobs {
		err := p.processFile(file)
		if err != nil {
			err = fmt.Errorf("%s: %w", file, err)
		}
		p.results <- err
	}
	log.Printf("Worker %d finished", i)
}

func (p *Processor) processFile(rel string) error {
	filename := filepath.Join(p.dstDir, outputName(rel))
	dir := filepath.Dir(filename)

	// if the output already exists, skip processing
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create path: %w", err)
	}

	inFile, err := os.Open(filepath.Join(p.srcDir, rel))
	if err != nil {
		return fmt.Errorf("failed to open source image: %w", err)
	}
	defer func() {
		_ = inFile.Close()
	}()

	tmpFile, err := os.CreateTemp(dir, "blur-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	cleanupTemp := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupTemp {
			_ = os.Remove(tmpFile.Name())
		}
	}()

	img, err := png.NewPngFromReader(inFile)
	if err != nil {
		return fmt.Errorf("failed to decode source image: %w", err)
	}

	if err := img.Pipeline(p.pipeline...); err != nil {
		return fmt.Errorf("failed to process image pipeline: %w", err)
	}

	if err := img.Write(tmpFile); err != nil {
		return fmt.Errorf("failed to write processed image to temporary file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file before rename: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filename); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	cleanupTemp = false // Successfully renamed, don't delete
	return nil
}

func (p *Processor) Wait() []error {
	waitFor := p.maxJobs
	if waitFor < 0 || waitFor > len(p.files) {
		waitFor = len(p.files)
	}
	log.Printf("Waiting for %d files to be blurred", waitFor)

	errors := make([]error, 0, 10)
	for range waitFor {
		err := <-p.results
		if err != nil {
			errors = append(errors, err)
		}
	}
	p.endTime = time.Now()
	elapsed := p.endTime.Sub(p.startTime)
	log.Printf("All files processed in %s (errors=%d)", elapsed, len(errors))
	return errors
}
