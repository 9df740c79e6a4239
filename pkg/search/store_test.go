package search_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glorpus-work/aurseek/pkg/aur"
	"github.com/glorpus-work/aurseek/pkg/search"
	"github.com/glorpus-work/aurseek/pkg/search/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var firefoxResponse = &aur.Response{
	ResultCount: 1,
	Results:     []aur.PackageSummary{{Name: "firefox", Version: "120.0"}},
}

func await(t *testing.T, ch <-chan aur.Status) (aur.Status, bool) {
	t.Helper()
	require.NotNil(t, ch, "expected the submit to dispatch a lookup")
	select {
	case status, ok := <-ch:
		return status, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for lookup")
		return aur.Status{}, false
	}
}

func TestSubmit_EmptyTextStaysIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	store := search.NewStore(lookup)

	for _, mode := range []aur.QueryMode{aur.ModePackage, aur.ModeMakeDepends, aur.ModeUser} {
		store.SetQuery(aur.Query{Text: "", Mode: mode})
		assert.Nil(t, store.Submit(context.Background()))
		assert.Equal(t, aur.StatusIdle, store.Status().Kind)
	}
}

func TestSubmit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	query := aur.Query{Text: "firefox", Mode: aur.ModePackage}
	lookup.EXPECT().Lookup(gomock.Any(), query).Return(aur.Success(firefoxResponse)).Times(1)

	store := search.NewStore(lookup)
	store.SetQuery(query)

	status, ok := await(t, store.Submit(context.Background()))
	require.True(t, ok)
	assert.Equal(t, aur.Success(firefoxResponse), status)
	assert.Equal(t, aur.Success(firefoxResponse), store.Status())
	assert.Equal(t, query, store.LastSubmitted())
}

func TestSubmit_DeduplicatesAfterSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(aur.Success(firefoxResponse)).Times(1)

	store := search.NewStore(lookup)
	store.SetText("firefox")

	_, ok := await(t, store.Submit(context.Background()))
	require.True(t, ok)

	assert.Nil(t, store.Submit(context.Background()))
	assert.Equal(t, aur.StatusSuccess, store.Status().Kind)
}

func TestSubmit_RetriesAfterFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	gomock.InOrder(
		lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(aur.Failure("request timed out")),
		lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(aur.Success(firefoxResponse)),
	)

	store := search.NewStore(lookup)
	store.SetText("firefox")

	status, _ := await(t, store.Submit(context.Background()))
	assert.Equal(t, aur.Failure("request timed out"), status)

	status, _ = await(t, store.Submit(context.Background()))
	assert.Equal(t, aur.StatusSuccess, status.Kind)
}

func TestSubmit_ModeChangeForcesLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), aur.Query{Text: "clang", Mode: aur.ModePackage}).Return(aur.Success(&aur.Response{}))
	lookup.EXPECT().Lookup(gomock.Any(), aur.Query{Text: "clang", Mode: aur.ModeMakeDepends}).Return(aur.Success(firefoxResponse))

	store := search.NewStore(lookup)
	store.SetText("clang")
	await(t, store.Submit(context.Background()))

	store.SetMode(aur.ModeMakeDepends)
	status, _ := await(t, store.Submit(context.Background()))
	assert.Equal(t, aur.Success(firefoxResponse), status)
}

func TestSubmit_IgnoredWhileLoading(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	release := make(chan struct{})
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ aur.Query) aur.Status {
			<-release
			return aur.Success(firefoxResponse)
		},
	).Times(1)

	store := search.NewStore(lookup)
	store.SetText("firefox")
	pending := store.Submit(context.Background())
	require.NotNil(t, pending)
	assert.Equal(t, aur.StatusLoading, store.Status().Kind)

	store.SetText("chromium")
	assert.Nil(t, store.Submit(context.Background()))
	assert.Nil(t, store.Submit(context.Background()))
	assert.Equal(t, aur.StatusLoading, store.Status().Kind)
	assert.Equal(t, "firefox", store.LastSubmitted().Text)

	close(release)
	status, ok := await(t, pending)
	require.True(t, ok)
	assert.Equal(t, aur.StatusSuccess, status.Kind)
}

func TestClear_AbandonsInFlightLookup(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ aur.Query) aur.Status {
			<-ctx.Done()
			return aur.Failure(ctx.Err().Error())
		},
	).Times(1)

	store := search.NewStore(lookup)
	store.SetText("firefox")
	pending := store.Submit(context.Background())
	require.NotNil(t, pending)

	store.Clear()

	_, ok := await(t, pending)
	assert.False(t, ok, "abandoned lookup must not deliver a status")
	assert.Equal(t, aur.StatusIdle, store.Status().Kind)
	assert.Equal(t, "", store.Query().Text)
	assert.Equal(t, "", store.LastSubmitted().Text)
}

func TestSetText_EmptyReturnsToIdle(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(aur.Success(firefoxResponse)).Times(2)

	store := search.NewStore(lookup)
	store.SetText("firefox")
	await(t, store.Submit(context.Background()))

	store.SetText("")
	assert.Equal(t, aur.StatusIdle, store.Status().Kind)

	// The same query is searched again once the store went back to idle.
	store.SetText("firefox")
	status, _ := await(t, store.Submit(context.Background()))
	assert.Equal(t, aur.StatusSuccess, status.Kind)
}

func TestClose_DiscardsLateResult(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	release := make(chan struct{})
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ aur.Query) aur.Status {
			<-release
			return aur.Success(firefoxResponse)
		},
	).Times(1)

	store := search.NewStore(lookup)
	var seen []aur.StatusKind
	var mu sync.Mutex
	store.Subscribe(func(s aur.Status) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s.Kind)
	})

	store.SetText("firefox")
	pending := store.Submit(context.Background())
	store.Close()
	close(release)

	_, ok := await(t, pending)
	assert.False(t, ok)
	assert.Equal(t, aur.StatusIdle, store.Status().Kind)
	assert.Nil(t, store.Submit(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []aur.StatusKind{aur.StatusLoading}, seen)
}

func TestSubscribe_ObservesTransitionsInOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(aur.Failure("No results"))

	store := search.NewStore(lookup, search.WithMode(aur.ModeUser))
	assert.Equal(t, aur.ModeUser, store.Query().Mode)

	seen := make(chan aur.Status, 4)
	unsubscribe := store.Subscribe(func(s aur.Status) { seen <- s })

	store.SetText("nobody")
	await(t, store.Submit(context.Background()))

	assert.Equal(t, aur.Loading(), <-seen)
	assert.Equal(t, aur.Failure("No results"), <-seen)

	unsubscribe()
	store.Clear()
	select {
	case s := <-seen:
		t.Fatalf("unexpected notification after unsubscribe: %v", s)
	default:
	}
}

func TestSubscribe_ObserverReadsStoreDuringConcurrentTransition(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookuper(ctrl)
	lookup.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(aur.Success(firefoxResponse))

	store := search.NewStore(lookup)

	started := make(chan struct{})
	observed := make(chan aur.Query, 1)
	store.Subscribe(func(s aur.Status) {
		if s.Kind != aur.StatusSuccess {
			return
		}
		close(started)
		// Give the concurrent Clear time to queue up behind this notification.
		time.Sleep(50 * time.Millisecond)
		_ = store.Status()
		observed <- store.Query()
	})

	store.SetText("firefox")
	require.NotNil(t, store.Submit(context.Background()))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the success notification")
	}

	cleared := make(chan struct{})
	go func() {
		store.Clear()
		close(cleared)
	}()

	select {
	case q := <-observed:
		assert.Equal(t, "firefox", q.Text)
	case <-time.After(2 * time.Second):
		t.Fatal("observer blocked reading the store")
	}
	select {
	case <-cleared:
	case <-time.After(2 * time.Second):
		t.Fatal("Clear blocked behind the observer")
	}
	assert.Equal(t, aur.StatusIdle, store.Status().Kind)
}
