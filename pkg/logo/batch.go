package logo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrUnsupportedOperationType = errors.New("unsupported operation type")
	ErrMissingOperationData     = errors.New("operation data missing")
	ErrTransactionFailed        = errors.New("transaction failed")
)

// BatchOperationType names the entity call an operation makes.
type BatchOperationType string

// Batch operation types.
const (
	BatchCreate BatchOperationType = "create"
	BatchUpdate BatchOperationType = "update"
	BatchPatch  BatchOperationType = "patch"
	BatchDelete BatchOperationType = "delete"
	BatchGet    BatchOperationType = "get"
)

// BatchOperation is a single call in a batch. Ref addresses update, patch, delete
// and get; Record carries create and update payloads; Fields carries a patch.
type BatchOperation[T any] struct {
	ID       string
	Type     BatchOperationType
	Ref      int
	Record   *T
	Fields   map[string]interface{}
	Callback func(result *BatchResult[T])
}

// BatchResult is the outcome of one operation. Data is nil for deletes.
type BatchResult[T any] struct {
	ID       string
	Success  bool
	Data     *T
	Error    error
	Duration time.Duration
}

// BatchExecutor runs operations against one entity client concurrently.
type BatchExecutor[T any] struct {
	client      EntityClient[T]
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates an executor running at most concurrency operations at
// once. Non-positive concurrency uses the default.
func NewBatchExecutor[T any](client EntityClient[T], concurrency int) *BatchExecutor[T] {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor[T]{
		client:      client,
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout bounds each operation.
func (b *BatchExecutor[T]) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs operations and returns their results in input order. Failures are
// reported per result; the returned error is only set when ctx ends first.
func (b *BatchExecutor[T]) Execute(ctx context.Context, operations []BatchOperation[T]) ([]BatchResult[T], error) {
	results := make([]BatchResult[T], len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation[T]) {
			defer waitGroup.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				results[index] = BatchResult[T]{ID: operation.ID, Error: ctx.Err()}

				return
			}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, ctx.Err()
}

func (b *BatchExecutor[T]) executeOperation(ctx context.Context, operation BatchOperation[T]) *BatchResult[T] {
	result := &BatchResult[T]{ID: operation.ID}

	var (
		data *T
		err  error
	)

	switch operation.Type {
	case BatchCreate:
		if operation.Record == nil {
			err = fmt.Errorf("%w: create needs a record", ErrMissingOperationData)

			break
		}

		data, err = b.client.Create(ctx, operation.Record)
	case BatchUpdate:
		if operation.Record == nil {
			err = fmt.Errorf("%w: update needs a record", ErrMissingOperationData)

			break
		}

		data, err = b.client.Update(ctx, operation.Ref, operation.Record)
	case BatchPatch:
		data, err = b.client.Patch(ctx, operation.Ref, operation.Fields)
	case BatchDelete:
		err = b.client.Delete(ctx, operation.Ref)
	case BatchGet:
		data, err = b.client.Get(ctx, operation.Ref)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedOperationType, operation.Type)
	}

	result.Success = err == nil
	result.Data = data
	result.Error = err

	return result
}

// BatchBuilder collects operations.
type BatchBuilder[T any] struct {
	operations []BatchOperation[T]
}

// NewBatchBuilder creates an empty builder.
func NewBatchBuilder[T any]() *BatchBuilder[T] {
	return &BatchBuilder[T]{}
}

// AddCreate adds a create.
func (b *BatchBuilder[T]) AddCreate(id string, record *T) *BatchBuilder[T] {
	return b.AddOperation(BatchOperation[T]{ID: id, Type: BatchCreate, Record: record})
}

// AddUpdate adds a full update of ref.
func (b *BatchBuilder[T]) AddUpdate(id string, ref int, record *T) *BatchBuilder[T] {
	return b.AddOperation(BatchOperation[T]{ID: id, Type: BatchUpdate, Ref: ref, Record: record})
}

// AddPatch adds a partial update of ref.
func (b *BatchBuilder[T]) AddPatch(id string, ref int, fields map[string]interface{}) *BatchBuilder[T] {
	return b.AddOperation(BatchOperation[T]{ID: id, Type: BatchPatch, Ref: ref, Fields: fields})
}

// AddDelete adds a delete of ref.
func (b *BatchBuilder[T]) AddDelete(id string, ref int) *BatchBuilder[T] {
	return b.AddOperation(BatchOperation[T]{ID: id, Type: BatchDelete, Ref: ref})
}

// AddGet adds a read of ref.
func (b *BatchBuilder[T]) AddGet(id string, ref int) *BatchBuilder[T] {
	return b.AddOperation(BatchOperation[T]{ID: id, Type: BatchGet, Ref: ref})
}

// AddOperation adds a prepared operation.
func (b *BatchBuilder[T]) AddOperation(operation BatchOperation[T]) *BatchBuilder[T] {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the collected operations.
func (b *BatchBuilder[T]) Build() []BatchOperation[T] {
	return b.operations
}

// referenced is satisfied by records embedding Resource.
type referenced interface {
	Ref() int
}

// BatchTransaction runs a batch and, on any failure, deletes the records its
// creates produced. Updates, patches and deletes are not undone.
type BatchTransaction[T any] struct {
	operations []BatchOperation[T]
	executor   *BatchExecutor[T]
	rollback   bool
}

// NewBatchTransaction creates a transaction with rollback enabled.
func NewBatchTransaction[T any](executor *BatchExecutor[T]) *BatchTransaction[T] {
	return &BatchTransaction[T]{
		executor: executor,
		rollback: true,
	}
}

// Add adds an operation.
func (t *BatchTransaction[T]) Add(operation BatchOperation[T]) *BatchTransaction[T] {
	t.operations = append(t.operations, operation)

	return t
}

// SetRollback sets whether failed transactions delete their created records.
func (t *BatchTransaction[T]) SetRollback(rollback bool) *BatchTransaction[T] {
	t.rollback = rollback

	return t
}

// Execute runs the operations. When any fails, the error lists the failed IDs.
func (t *BatchTransaction[T]) Execute(ctx context.Context) ([]BatchResult[T], error) {
	results, err := t.executor.Execute(ctx, t.operations)

	var failed []string

	for _, result := range results {
		if !result.Success {
			failed = append(failed, result.ID)
		}
	}

	if len(failed) == 0 {
		return results, err
	}

	if t.rollback {
		t.performRollback(context.WithoutCancel(ctx), results)
	}

	return results, fmt.Errorf("%w, %d operations failed: %v", ErrTransactionFailed, len(failed), failed)
}

func (t *BatchTransaction[T]) performRollback(ctx context.Context, results []BatchResult[T]) {
	var rollbackOps []BatchOperation[T]

	for i, result := range results {
		if !result.Success || t.operations[i].Type != BatchCreate || result.Data == nil {
			continue
		}

		record, ok := any(result.Data).(referenced)
		if !ok || record.Ref() == 0 {
			continue
		}

		rollbackOps = append(rollbackOps, BatchOperation[T]{
			ID:   "rollback_" + result.ID,
			Type: BatchDelete,
			Ref:  record.Ref(),
		})
	}

	if len(rollbackOps) > 0 {
		_, _ = t.executor.Execute(ctx, rollbackOps)
	}
}
