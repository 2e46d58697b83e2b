package api

import (
	"context"
	"fmt"
	"mime/multipart"

	"golang.org/x/sync/errgroup"

	"github.com/moyoez/fileshare-go/process"
	"github.com/moyoez/fileshare-go/storage"
	"github.com/moyoez/fileshare-go/tool"
	"github.com/moyoez/fileshare-go/types"
)

// Coordinator orchestrates one upload batch: batch-level validation, then a
// concurrent per-file pipeline of validate, reserve name, write, schedule
// conversion. One file's failure never aborts its siblings, and the
// aggregated result reports every file's fate individually.
type Coordinator struct {
	policy    *storage.Policy
	namer     *storage.Namer
	writer    *storage.Writer
	converter *process.Converter
	notify    process.Notifier
	// writeCap bounds concurrent writes per batch so a large batch cannot
	// exhaust file descriptors.
	writeCap int
}

// NewCoordinator wires the upload pipeline. converter and notify may be nil.
func NewCoordinator(policy *storage.Policy, namer *storage.Namer, writer *storage.Writer, converter *process.Converter, notify process.Notifier, writeCap int) *Coordinator {
	if writeCap <= 0 {
		writeCap = 1
	}
	return &Coordinator{
		policy:    policy,
		namer:     namer,
		writer:    writer,
		converter: converter,
		notify:    notify,
		writeCap:  writeCap,
	}
}

// CheckBatch validates batch-level constraints. Surfaced as a request-level
// failure before any file is touched.
func (co *Coordinator) CheckBatch(count int) error {
	if count == 0 {
		return fmt.Errorf("no files in request")
	}
	return co.policy.CheckBatch(count)
}

// ProcessBatch writes all files of one batch concurrently, bounded by the
// configured write cap, and returns the per-file outcomes in input order.
// Cancelling ctx (client disconnect) aborts in-flight writes, which remove
// their partial files.
func (co *Coordinator) ProcessBatch(ctx context.Context, files []*multipart.FileHeader) types.BatchResult {
	outcomes := make([]types.UploadOutcome, len(files))

	g := new(errgroup.Group)
	g.SetLimit(co.writeCap)
	for i, header := range files {
		g.Go(func() error {
			outcomes[i] = co.processFile(ctx, header)
			return nil
		})
	}
	_ = g.Wait()

	result := types.BatchResult{Results: outcomes, Errors: []string{}}
	for _, outcome := range outcomes {
		if outcome.Success {
			result.Successful++
		} else {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("File %s: %s", outcome.FileName, outcome.Error))
		}
	}
	return result
}

func (co *Coordinator) processFile(ctx context.Context, header *multipart.FileHeader) types.UploadOutcome {
	outcome := types.UploadOutcome{FileName: header.Filename}

	if err := co.policy.CheckFile(header.Filename, header.Size); err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	name, err := co.namer.Reserve(header.Filename)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	part, err := header.Open()
	if err != nil {
		co.namer.Release(name)
		outcome.Error = fmt.Sprintf("%v: %v", storage.ErrWriteFailed, err)
		return outcome
	}
	defer func() {
		if err := part.Close(); err != nil {
			tool.DefaultLogger.Errorf("[Upload] Failed to close part %s: %v", header.Filename, err)
		}
	}()

	written, err := co.writer.Write(ctx, name, part)
	if err != nil {
		co.namer.Release(name)
		outcome.Error = err.Error()
		tool.DefaultLogger.Errorf("[Upload] Write failed for %s: %v", header.Filename, err)
		return outcome
	}
	co.namer.Commit(name)

	outcome.StoredName = name
	outcome.Success = true
	outcome.Size = written
	tool.DefaultLogger.Infof("[Upload] Saved file: %s (%d bytes)", name, written)

	if co.notify != nil {
		co.notify.Broadcast(&types.Event{
			Type: types.EventUploadStored,
			Data: map[string]any{"name": name, "size": written},
		})
	}
	// Fire-and-forget: the response never waits for conversions.
	if co.converter != nil && co.policy.Category(name) == types.CategoryImage && co.policy.ShouldConvert(name) {
		co.converter.Enqueue(name)
	}
	return outcome
}
