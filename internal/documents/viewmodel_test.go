package documents

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/salmacher/Rag-project/internal/api"
)

type noToken struct{}

func (noToken) Token() string { return "" }

// docBackend serves a synthetic collection of `total` documents with working
// skip/limit pagination and counted DELETE calls.
type docBackend struct {
	srv     *httptest.Server
	total   atomic.Int32
	deletes atomic.Int32
	failGet atomic.Bool
}

func newDocBackend(t *testing.T, total int) *docBackend {
	t.Helper()
	b := &docBackend{}
	b.total.Store(int32(total))
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			b.deletes.Add(1)
			b.total.Add(-1)
			id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/documents/"), 10, 64)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(api.DeleteResponse{Message: "deleted", DeletedID: id})
			return
		}
		if b.failGet.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"detail":"database unavailable"}`)
			return
		}
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		total := int(b.total.Load())
		var docs []api.DocumentSummary
		for i := skip; i < total && i < skip+limit; i++ {
			docs = append(docs, api.DocumentSummary{
				ID:         int64(i + 1),
				Title:      fmt.Sprintf("doc-%d.pdf", i+1),
				Processed:  true,
				UploadedAt: "2026-01-01T00:00:00",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.DocumentList{Documents: docs, TotalCount: total})
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func newTestViewModel(t *testing.T, backend *docBackend, pageSize int) *ViewModel {
	t.Helper()
	client := api.NewClient(backend.srv.URL, 5*time.Second, noToken{}, zap.NewNop())
	return NewViewModel(context.Background(), client, pageSize, zap.NewNop())
}

func TestLoadEstablishesPageInvariant(t *testing.T) {
	backend := newDocBackend(t, 25)
	vm := newTestViewModel(t, backend, 10)

	cmd := vm.Load(0)
	require.NotNil(t, cmd)
	assert.True(t, vm.Loading())

	assert.Nil(t, vm.Update(cmd()))
	assert.False(t, vm.Loading())
	assert.Len(t, vm.Items(), 10)
	assert.Equal(t, 25, vm.TotalCount())
	assert.Equal(t, 0, vm.PageIndex())
	assert.Equal(t, 3, vm.TotalPages())
}

func TestStalePageResponseIsDiscarded(t *testing.T) {
	backend := newDocBackend(t, 25)
	vm := newTestViewModel(t, backend, 10)

	first := vm.Load(0)
	second := vm.Load(1)

	firstMsg := first()
	secondMsg := second()

	// Applying the newer response first, then the superseded one: only the
	// newer request may populate state.
	assert.Nil(t, vm.Update(secondMsg))
	assert.Equal(t, 1, vm.PageIndex())
	require.Len(t, vm.Items(), 10)
	assert.Equal(t, int64(11), vm.Items()[0].ID)

	assert.Nil(t, vm.Update(firstMsg))
	assert.Equal(t, 1, vm.PageIndex(), "stale response must not move the page")
	assert.Equal(t, int64(11), vm.Items()[0].ID)
}

func TestNextAndPrevPageStayInRange(t *testing.T) {
	backend := newDocBackend(t, 15)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())

	assert.Nil(t, vm.PrevPage(), "already on the first page")

	cmd := vm.NextPage()
	require.NotNil(t, cmd)
	vm.Update(cmd())
	assert.Equal(t, 1, vm.PageIndex())
	assert.Len(t, vm.Items(), 5)

	assert.Nil(t, vm.NextPage(), "already on the last page")
}

func TestDeleteLastItemOnLastPageClampsIndex(t *testing.T) {
	backend := newDocBackend(t, 11)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(1)())
	require.Len(t, vm.Items(), 1)

	require.True(t, vm.RequestDelete(vm.Items()[0]))
	delCmd := vm.ConfirmDelete()
	require.NotNil(t, delCmd)
	assert.Equal(t, DeletionInProgress, vm.Pending().State)

	reload := vm.Update(delCmd())
	require.NotNil(t, reload, "a successful delete reloads the page")
	assert.Nil(t, vm.Pending())
	assert.Equal(t, 0, vm.PageIndex(), "index clamps before the refetch")

	vm.Update(reload())
	assert.Len(t, vm.Items(), 10)
	assert.Equal(t, 10, vm.TotalCount())
	assert.Equal(t, 1, vm.TotalPages())
}

func TestCancelDeleteTouchesNothing(t *testing.T) {
	backend := newDocBackend(t, 5)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())

	require.True(t, vm.RequestDelete(vm.Items()[2]))
	require.NotNil(t, vm.Pending())

	require.True(t, vm.CancelDelete())
	assert.Nil(t, vm.Pending())
	assert.Len(t, vm.Items(), 5)
	assert.Equal(t, int32(0), backend.deletes.Load(), "cancel must not reach the network")
}

func TestCancelRejectedOnceSubmitted(t *testing.T) {
	backend := newDocBackend(t, 5)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())

	require.True(t, vm.RequestDelete(vm.Items()[0]))
	require.NotNil(t, vm.ConfirmDelete())

	assert.False(t, vm.CancelDelete(), "an in-flight delete cannot be aborted")
	assert.False(t, vm.RequestDelete(vm.Items()[1]), "one deletion workflow at a time")
	require.NotNil(t, vm.Pending())
	assert.Equal(t, DeletionInProgress, vm.Pending().State)
}

func TestConfirmDeleteRequiresConfirmationStep(t *testing.T) {
	backend := newDocBackend(t, 5)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())

	assert.Nil(t, vm.ConfirmDelete(), "nothing pending to confirm")
}

func TestFailedDeleteKeepsItems(t *testing.T) {
	backend := newDocBackend(t, 5)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())

	require.True(t, vm.RequestDelete(vm.Items()[0]))
	vm.pending.State = DeletionInProgress

	assert.Nil(t, vm.Update(deleteMsg{id: 1, err: &api.Error{Kind: api.KindNotFound, Status: 404, Detail: "Document not found"}}))

	assert.Nil(t, vm.Pending(), "the workflow ends either way")
	assert.Len(t, vm.Items(), 5, "no optimistic removal to roll back")
	require.Error(t, vm.Advisory())
	assert.True(t, api.IsKind(vm.Advisory(), api.KindNotFound))

	vm.DismissAdvisory()
	assert.NoError(t, vm.Advisory())
}

func TestFailedReloadKeepsVisibleItems(t *testing.T) {
	backend := newDocBackend(t, 5)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())
	require.Len(t, vm.Items(), 5)

	backend.failGet.Store(true)
	cmd := vm.Invalidate()
	assert.Nil(t, vm.Update(cmd()))

	assert.Len(t, vm.Items(), 5, "a failed reload must not blank the list")
	require.Error(t, vm.Advisory())
	assert.True(t, api.IsKind(vm.Advisory(), api.KindServer))
	assert.False(t, vm.Loading())
}

func TestOutOfRangeResponseClampsAndRefetches(t *testing.T) {
	backend := newDocBackend(t, 25)
	vm := newTestViewModel(t, backend, 10)

	// Another client shrank the collection; page 5 no longer exists.
	cmd := vm.Load(5)
	refetch := vm.Update(cmd())
	require.NotNil(t, refetch)
	assert.Equal(t, 2, vm.PageIndex())

	assert.Nil(t, vm.Update(refetch()), "the clamp refetches exactly once")
	assert.Len(t, vm.Items(), 5)
}

func TestUploadResultInvalidatesListing(t *testing.T) {
	backend := newDocBackend(t, 5)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())
	epoch := vm.Epoch()

	reload := vm.Update(UploadedMsg{Resp: &api.UploadResponse{
		ID: 6, Filename: "notes.pdf", ChunksCreated: 12, Message: "processed", Processed: true,
	}})
	require.NotNil(t, reload)
	assert.Equal(t, epoch+1, vm.Epoch())
	require.NotNil(t, vm.LastUpload())
	assert.Equal(t, "notes.pdf", vm.LastUpload().Filename)

	backend.total.Store(6)
	vm.Update(reload())
	assert.Len(t, vm.Items(), 6)
}

func TestFailedUploadRaisesAdvisoryOnly(t *testing.T) {
	backend := newDocBackend(t, 5)
	vm := newTestViewModel(t, backend, 10)
	vm.Update(vm.Load(0)())
	epoch := vm.Epoch()

	assert.Nil(t, vm.Update(UploadedMsg{Err: &api.Error{Kind: api.KindValidation, Status: 400, Detail: "Unsupported file type"}}))
	assert.Equal(t, epoch, vm.Epoch(), "a failed upload invalidates nothing")
	assert.Nil(t, vm.LastUpload())
	assert.True(t, api.IsKind(vm.Advisory(), api.KindValidation))
}

func TestUploadRejectsEmptyPath(t *testing.T) {
	backend := newDocBackend(t, 0)
	vm := newTestViewModel(t, backend, 10)
	assert.Nil(t, vm.Upload(""))
}
