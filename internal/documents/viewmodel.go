package documents

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/salmacher/Rag-project/internal/api"
)

// DeletionState tracks the two-step delete workflow.
type DeletionState int

const (
	DeletionAwaitingConfirmation DeletionState = iota
	DeletionInProgress
)

// PendingDeletion is the transient confirmation state for one target row.
type PendingDeletion struct {
	Target api.DocumentSummary
	State  DeletionState
}

// ViewModel manages the paginated, server-backed document list: page state,
// refresh on invalidation, and the guarded delete workflow. Responses carry a
// request sequence number; anything but the latest issued request is stale
// and gets discarded, so concurrent reloads can never interleave.
//
// Invariant: 0 <= PageIndex < max(1, ceil(TotalCount/PageSize)) once a page
// has loaded; removals clamp the index down.
type ViewModel struct {
	ctx    context.Context
	client *api.Client
	log    *zap.Logger

	items      []api.DocumentSummary
	totalCount int
	pageIndex  int
	pageSize   int
	epoch      uint64
	seq        uint64

	loading    bool
	pending    *PendingDeletion
	advisory   error
	lastUpload *api.UploadResponse
}

type pageMsg struct {
	seq  uint64
	list *api.DocumentList
	err  error
}

type deleteMsg struct {
	id  int64
	err error
}

// UploadedMsg reports an upload outcome; a success triggers invalidation.
type UploadedMsg struct {
	Resp *api.UploadResponse
	Err  error
}

func NewViewModel(ctx context.Context, client *api.Client, pageSize int, log *zap.Logger) *ViewModel {
	if pageSize < 1 {
		pageSize = 10
	}
	return &ViewModel{ctx: ctx, client: client, pageSize: pageSize, log: log}
}

func (v *ViewModel) Items() []api.DocumentSummary { return v.items }
func (v *ViewModel) TotalCount() int              { return v.totalCount }
func (v *ViewModel) PageIndex() int               { return v.pageIndex }
func (v *ViewModel) PageSize() int                { return v.pageSize }
func (v *ViewModel) Loading() bool                { return v.loading }
func (v *ViewModel) Pending() *PendingDeletion    { return v.pending }
func (v *ViewModel) Advisory() error              { return v.advisory }
func (v *ViewModel) DismissAdvisory()             { v.advisory = nil }

// LastUpload is the most recent successful upload receipt, for display.
func (v *ViewModel) LastUpload() *api.UploadResponse { return v.lastUpload }

// Epoch is the invalidation counter; it only ever advances.
func (v *ViewModel) Epoch() uint64 { return v.epoch }

// TotalPages is always at least 1 so an empty collection still has a page 0.
func (v *ViewModel) TotalPages() int { return totalPages(v.totalCount, v.pageSize) }

func totalPages(total, size int) int {
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Load requests the given page. Issuing a new load supersedes any in flight.
func (v *ViewModel) Load(pageIndex int) tea.Cmd {
	if pageIndex < 0 {
		pageIndex = 0
	}
	v.pageIndex = pageIndex
	v.loading = true
	v.seq++
	seq := v.seq
	skip := pageIndex * v.pageSize
	limit := v.pageSize
	return func() tea.Msg {
		list, err := v.client.ListDocuments(v.ctx, skip, limit)
		return pageMsg{seq: seq, list: list, err: err}
	}
}

// NextPage and PrevPage move within the known page range.
func (v *ViewModel) NextPage() tea.Cmd {
	if v.pageIndex+1 >= v.TotalPages() {
		return nil
	}
	return v.Load(v.pageIndex + 1)
}

func (v *ViewModel) PrevPage() tea.Cmd {
	if v.pageIndex == 0 {
		return nil
	}
	return v.Load(v.pageIndex - 1)
}

// Invalidate marks the cached page stale and reloads it. Called after a
// successful upload and internally after a successful delete.
func (v *ViewModel) Invalidate() tea.Cmd {
	v.epoch++
	return v.Load(v.pageIndex)
}

// invalidateAfterDelete knows the collection shrank by one, so it can clamp
// the page index before requesting, per the page invariant.
func (v *ViewModel) invalidateAfterDelete() tea.Cmd {
	v.epoch++
	newTotal := v.totalCount - 1
	if newTotal < 0 {
		newTotal = 0
	}
	if last := totalPages(newTotal, v.pageSize) - 1; v.pageIndex > last {
		v.pageIndex = last
	}
	return v.Load(v.pageIndex)
}

// RequestDelete opens the confirmation step. No network effect. Rejected
// while another deletion is already being submitted.
func (v *ViewModel) RequestDelete(target api.DocumentSummary) bool {
	if v.pending != nil && v.pending.State == DeletionInProgress {
		return false
	}
	v.pending = &PendingDeletion{Target: target, State: DeletionAwaitingConfirmation}
	return true
}

// ConfirmDelete submits the deletion. Once submitted it cannot be aborted.
func (v *ViewModel) ConfirmDelete() tea.Cmd {
	if v.pending == nil || v.pending.State != DeletionAwaitingConfirmation {
		return nil
	}
	v.pending.State = DeletionInProgress
	id := v.pending.Target.ID
	return func() tea.Msg {
		err := v.client.DeleteDocument(v.ctx, id)
		return deleteMsg{id: id, err: err}
	}
}

// CancelDelete discards the pending deletion; only legal while awaiting
// confirmation.
func (v *ViewModel) CancelDelete() bool {
	if v.pending == nil || v.pending.State != DeletionAwaitingConfirmation {
		return false
	}
	v.pending = nil
	return true
}

// Upload sends the file at path and reports through UploadedMsg.
func (v *ViewModel) Upload(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		resp, err := v.client.Upload(v.ctx, path)
		return UploadedMsg{Resp: resp, Err: err}
	}
}

// Update applies page, delete and upload results.
func (v *ViewModel) Update(msg tea.Msg) tea.Cmd {
	switch res := msg.(type) {
	case pageMsg:
		if res.seq != v.seq {
			v.log.Info("discarding stale page response")
			return nil
		}
		v.loading = false
		if res.err != nil {
			// Keep whatever the user was looking at; a failed reload must
			// not blank the list.
			v.advisory = res.err
			return nil
		}
		v.items = res.list.Documents
		v.totalCount = res.list.TotalCount
		if last := v.TotalPages() - 1; v.pageIndex > last {
			// The collection shrank under us (e.g. another client deleted
			// rows); clamp and refetch once.
			v.pageIndex = last
			return v.Load(v.pageIndex)
		}
		return nil

	case deleteMsg:
		if v.pending == nil || v.pending.State != DeletionInProgress {
			return nil
		}
		v.pending = nil
		if res.err != nil {
			// No optimistic removal happened, so the row simply stays until
			// a real refetch or retry.
			v.advisory = res.err
			v.log.Warn("delete failed", zap.Int64("document_id", res.id), zap.Error(res.err))
			return nil
		}
		v.log.Info("document deleted", zap.Int64("document_id", res.id))
		return v.invalidateAfterDelete()

	case UploadedMsg:
		if res.Err != nil {
			v.advisory = res.Err
			return nil
		}
		v.lastUpload = res.Resp
		v.log.Info("document uploaded",
			zap.Int64("document_id", res.Resp.ID),
			zap.Int("chunks_created", res.Resp.ChunksCreated))
		return v.Invalidate()
	}
	return nil
}
