package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toucanlabs/toucans-api/internal/domain"
	"github.com/toucanlabs/toucans-api/internal/dto"
	"github.com/toucanlabs/toucans-api/internal/ptr"
	"github.com/toucanlabs/toucans-api/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createUser(t *testing.T, store *sqlite.Store, email string) dto.UserResponse {
	t.Helper()
	user, err := store.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)
	return *user
}

func createList(t *testing.T, store *sqlite.Store, ownerID uuid.UUID, name string) dto.TodoListResponse {
	t.Helper()
	list, err := store.CreateList(context.Background(), dto.CreateListRequest{
		Name:    name,
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	return *list
}

func createItem(t *testing.T, store *sqlite.Store, listID uuid.UUID, title string, priority domain.Priority) dto.TodoItemResponse {
	t.Helper()
	item, err := store.CreateItem(context.Background(), listID, dto.CreateItemRequest{
		Title:    title,
		Priority: priority,
	})
	require.NoError(t, err)
	return *item
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := newTestStore(t)

	createUser(t, store, "ada@example.com")
	_, err := store.CreateUser(context.Background(), dto.CreateUserRequest{
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Byron",
	})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUpdateUserPartialFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := createUser(t, store, "ada@example.com")

	// Only the first name changes; the last name must survive.
	err := store.UpdateUser(ctx, user.ID, dto.UpdateUserRequest{FirstName: ptr.To("Augusta")})
	require.NoError(t, err)

	got, err := store.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", got.FirstName)
	assert.Equal(t, "Lovelace", got.LastName)
	assert.Equal(t, "Augusta Lovelace", got.FullName)

	// An empty update still reports a missing user.
	err = store.UpdateUser(ctx, uuid.New(), dto.UpdateUserRequest{})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestDeleteUserOwningListsIsRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")

	err := store.DeleteUser(ctx, owner.ID)
	require.ErrorIs(t, err, domain.ErrOwnerHasLists)

	// Once the list is gone the user can be deleted.
	require.NoError(t, store.DeleteList(ctx, list.ID))
	require.NoError(t, store.DeleteUser(ctx, owner.ID))
}

func TestDeleteUserCascadesShares(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	grantee := createUser(t, store, "grantee@example.com")
	list := createList(t, store, owner.ID, "groceries")

	_, err := store.ShareList(ctx, list.ID, dto.ShareListRequest{
		UserID:     &grantee.ID,
		Permission: ptr.To(domain.PermissionReadOnly),
	})
	require.NoError(t, err)

	// The grantee owns nothing, so the delete succeeds and takes the
	// share with it.
	require.NoError(t, store.DeleteUser(ctx, grantee.ID))

	shares, err := store.ListShares(ctx, list.ID)
	require.NoError(t, err)
	assert.Empty(t, shares)
}

func TestDeleteListCascadesItemsAndShares(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	grantee := createUser(t, store, "grantee@example.com")
	list := createList(t, store, owner.ID, "groceries")
	item := createItem(t, store, list.ID, "buy milk", domain.PriorityHigh)

	_, err := store.ShareList(ctx, list.ID, dto.ShareListRequest{
		UserID:     &grantee.ID,
		Permission: ptr.To(domain.PermissionReadWrite),
	})
	require.NoError(t, err)

	require.NoError(t, store.DeleteList(ctx, list.ID))

	_, err = store.FindListByID(ctx, list.ID)
	require.ErrorIs(t, err, domain.ErrListNotFound)
	_, err = store.FindItemByID(ctx, list.ID, item.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	shared, err := store.ListSharedLists(ctx, grantee.ID)
	require.NoError(t, err)
	assert.Empty(t, shared)
}

func TestShareListUpsertKeepsOriginalSharedAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	grantee := createUser(t, store, "grantee@example.com")
	list := createList(t, store, owner.ID, "groceries")

	first, err := store.ShareList(ctx, list.ID, dto.ShareListRequest{
		UserID:     &grantee.ID,
		Permission: ptr.To(domain.PermissionReadOnly),
	})
	require.NoError(t, err)

	second, err := store.ShareList(ctx, list.ID, dto.ShareListRequest{
		UserID:     &grantee.ID,
		Permission: ptr.To(domain.PermissionAdmin),
	})
	require.NoError(t, err)

	// Same grant row: permission overwritten, id and timestamp kept.
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.SharedAt, second.SharedAt)
	assert.Equal(t, domain.PermissionAdmin, second.Permission)

	shares, err := store.ListShares(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, domain.PermissionAdmin, shares[0].Permission)
}

func TestShareListValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	grantee := createUser(t, store, "grantee@example.com")
	list := createList(t, store, owner.ID, "groceries")

	_, err := store.ShareList(ctx, list.ID, dto.ShareListRequest{
		Permission: ptr.To(domain.PermissionReadOnly),
	})
	require.ErrorIs(t, err, domain.ErrShareUserRequired)

	_, err = store.ShareList(ctx, list.ID, dto.ShareListRequest{UserID: &grantee.ID})
	require.ErrorIs(t, err, domain.ErrSharePermissionRequired)

	_, err = store.ShareList(ctx, uuid.New(), dto.ShareListRequest{
		UserID:     &grantee.ID,
		Permission: ptr.To(domain.PermissionReadOnly),
	})
	require.ErrorIs(t, err, domain.ErrListNotFound)

	missing := uuid.New()
	_, err = store.ShareList(ctx, list.ID, dto.ShareListRequest{
		UserID:     &missing,
		Permission: ptr.To(domain.PermissionReadOnly),
	})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestRemoveShare(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	grantee := createUser(t, store, "grantee@example.com")
	list := createList(t, store, owner.ID, "groceries")

	err := store.RemoveShare(ctx, list.ID, grantee.ID)
	require.ErrorIs(t, err, domain.ErrShareNotFound)

	_, err = store.ShareList(ctx, list.ID, dto.ShareListRequest{
		UserID:     &grantee.ID,
		Permission: ptr.To(domain.PermissionReadOnly),
	})
	require.NoError(t, err)

	require.NoError(t, store.RemoveShare(ctx, list.ID, grantee.ID))

	shared, err := store.ListSharedLists(ctx, grantee.ID)
	require.NoError(t, err)
	assert.Empty(t, shared)
}

func TestSharedListsCarryPermissionAndCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	grantee := createUser(t, store, "grantee@example.com")
	list := createList(t, store, owner.ID, "groceries")

	item := createItem(t, store, list.ID, "buy milk", domain.PriorityMedium)
	createItem(t, store, list.ID, "buy eggs", domain.PriorityMedium)

	err := store.UpdateItem(ctx, list.ID, item.ID, dto.UpdateItemRequest{
		Title:    item.Title,
		Priority: item.Priority,
		Status:   domain.StatusCompleted,
	})
	require.NoError(t, err)

	_, err = store.ShareList(ctx, list.ID, dto.ShareListRequest{
		UserID:     &grantee.ID,
		Permission: ptr.To(domain.PermissionReadWrite),
	})
	require.NoError(t, err)

	shared, err := store.ListSharedLists(ctx, grantee.ID)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, list.ID, shared[0].ID)
	assert.Equal(t, 2, shared[0].ItemCount)
	assert.Equal(t, 1, shared[0].CompletedItemCount)
	require.NotNil(t, shared[0].Permission)
	assert.Equal(t, domain.PermissionReadWrite, *shared[0].Permission)

	owned, err := store.ListUserLists(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, 2, owned[0].ItemCount)
	assert.Equal(t, 1, owned[0].CompletedItemCount)
	assert.Nil(t, owned[0].Permission)
}

func TestCreateItemDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")

	item, err := store.CreateItem(ctx, list.ID, dto.CreateItemRequest{Title: "buy milk"})
	require.NoError(t, err)

	// New items always start NOT_STARTED with MEDIUM priority and no
	// completion stamp.
	assert.Equal(t, domain.StatusNotStarted, item.Status)
	assert.Equal(t, domain.PriorityMedium, item.Priority)
	assert.Nil(t, item.CompletedAt)
}

func TestCreateItemUnderMissingList(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateItem(context.Background(), uuid.New(), dto.CreateItemRequest{Title: "orphan"})
	require.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestItemLookupIsScopedToList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	listA := createList(t, store, owner.ID, "groceries")
	listB := createList(t, store, owner.ID, "chores")
	item := createItem(t, store, listA.ID, "buy milk", domain.PriorityLow)

	// The item exists, but not under listB.
	_, err := store.FindItemByID(ctx, listB.ID, item.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	err = store.DeleteItem(ctx, listB.ID, item.ID)
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	err = store.UpdateItem(ctx, listB.ID, item.ID, dto.UpdateItemRequest{
		Title:    "hijack",
		Priority: domain.PriorityLow,
		Status:   domain.StatusNotStarted,
	})
	require.ErrorIs(t, err, domain.ErrItemNotFound)

	// Still reachable through its own list.
	got, err := store.FindItemByID(ctx, listA.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "buy milk", got.Title)
}

func TestUpdateItemCompletionPairing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")
	item := createItem(t, store, list.ID, "buy milk", domain.PriorityLow)

	update := dto.UpdateItemRequest{
		Title:    "buy milk",
		Priority: domain.PriorityLow,
		Status:   domain.StatusCompleted,
	}

	// Entering COMPLETED stamps completed_at.
	require.NoError(t, store.UpdateItem(ctx, list.ID, item.ID, update))
	first, err := store.FindItemByID(ctx, list.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)

	// Staying COMPLETED keeps the original stamp.
	update.Title = "buy oat milk"
	require.NoError(t, store.UpdateItem(ctx, list.ID, item.ID, update))
	second, err := store.FindItemByID(ctx, list.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, second.CompletedAt)
	assert.Equal(t, *first.CompletedAt, *second.CompletedAt)

	// Leaving COMPLETED clears it.
	update.Status = domain.StatusInProgress
	require.NoError(t, store.UpdateItem(ctx, list.ID, item.ID, update))
	third, err := store.FindItemByID(ctx, list.ID, item.ID)
	require.NoError(t, err)
	assert.Nil(t, third.CompletedAt)
	assert.Equal(t, domain.StatusInProgress, third.Status)
}

func TestListItemsPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")
	for _, title := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		createItem(t, store, list.ID, title, domain.PriorityMedium)
	}

	filter := dto.TodoItemFilter{ListID: list.ID}
	filter.PageNumber = 2
	filter.PageSize = 2

	page, err := store.ListItems(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.True(t, page.HasPreviousPage)

	// A page beyond the last is empty but keeps the true totals.
	filter.PageNumber = 9
	page, err = store.ListItems(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.HasNextPage)
}

func TestListItemsMissingList(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ListItems(context.Background(), dto.TodoItemFilter{ListID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrListNotFound)
}

func TestListItemsSortsByPriorityRank(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")
	createItem(t, store, list.ID, "critical task", domain.PriorityCritical)
	createItem(t, store, list.ID, "low task", domain.PriorityLow)
	createItem(t, store, list.ID, "high task", domain.PriorityHigh)
	createItem(t, store, list.ID, "medium task", domain.PriorityMedium)

	filter := dto.TodoItemFilter{ListID: list.ID}
	filter.SortBy = "priority"

	page, err := store.ListItems(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 4)

	// Semantic rank, not lexical name order (which would put CRITICAL
	// before HIGH before LOW before MEDIUM).
	got := make([]domain.Priority, 0, 4)
	for _, item := range page.Items {
		got = append(got, item.Priority)
	}
	assert.Equal(t, []domain.Priority{
		domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityCritical,
	}, got)
}

func TestListItemsUnknownSortKeyFallsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")
	first := createItem(t, store, list.ID, "zulu", domain.PriorityMedium)
	second := createItem(t, store, list.ID, "alpha", domain.PriorityMedium)

	filter := dto.TodoItemFilter{ListID: list.ID}
	filter.SortBy = "no_such_column; DROP TABLE todo_items"
	filter.IsDescending = true

	// Unknown keys fall back to creation order ascending; the direction
	// flag is ignored along with the bogus key.
	page, err := store.ListItems(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, first.ID, page.Items[0].ID)
	assert.Equal(t, second.ID, page.Items[1].ID)
}

func TestListItemsFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	assignee := createUser(t, store, "assignee@example.com")
	list := createList(t, store, owner.ID, "groceries")

	_, err := store.CreateItem(ctx, list.ID, dto.CreateItemRequest{
		Title:        "buy milk",
		Priority:     domain.PriorityHigh,
		AssignedToID: &assignee.ID,
	})
	require.NoError(t, err)
	createItem(t, store, list.ID, "buy eggs", domain.PriorityLow)

	filter := dto.TodoItemFilter{ListID: list.ID, Priority: ptr.To(domain.PriorityHigh)}
	page, err := store.ListItems(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "buy milk", page.Items[0].Title)
	require.NotNil(t, page.Items[0].AssignedTo)
	assert.Equal(t, assignee.ID, page.Items[0].AssignedTo.ID)

	filter = dto.TodoItemFilter{ListID: list.ID, AssignedToID: &assignee.ID}
	page, err = store.ListItems(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	search := dto.TodoItemFilter{ListID: list.ID}
	search.SearchTerm = "EGGS"
	page, err = store.ListItems(ctx, search)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "buy eggs", page.Items[0].Title)
}

func TestListItemsDueDateRangeFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")
	now := time.Now().UTC()

	soon, err := store.CreateItem(ctx, list.ID, dto.CreateItemRequest{
		Title:   "file taxes",
		DueDate: ptr.To(now.Add(24 * time.Hour)),
	})
	require.NoError(t, err)
	_, err = store.CreateItem(ctx, list.ID, dto.CreateItemRequest{
		Title:   "water plants",
		DueDate: ptr.To(now.Add(240 * time.Hour)),
	})
	require.NoError(t, err)
	createItem(t, store, list.ID, "someday", domain.PriorityMedium)

	// A window around the near deadline selects only that item; undated
	// items never match a due-date bound.
	filter := dto.TodoItemFilter{
		ListID:      list.ID,
		DueDateFrom: ptr.To(now),
		DueDateTo:   ptr.To(now.Add(48 * time.Hour)),
	}
	page, err := store.ListItems(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, soon.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.TotalItems)

	// An open-ended lower bound picks up both dated items.
	filter = dto.TodoItemFilter{ListID: list.ID, DueDateFrom: ptr.To(now)}
	page, err = store.ListItems(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	// A window entirely in the future matches nothing.
	filter = dto.TodoItemFilter{ListID: list.ID, DueDateFrom: ptr.To(now.Add(720 * time.Hour))}
	page, err = store.ListItems(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalItems)
}

func TestListUsersCreatedDateRangeFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createUser(t, store, "ada@example.com")
	createUser(t, store, "grace@example.com")
	now := time.Now().UTC()

	// A window surrounding creation time holds both users.
	filter := dto.UserFilter{}
	filter.FromDate = ptr.To(now.Add(-time.Hour))
	filter.ToDate = ptr.To(now.Add(time.Hour))
	page, err := store.ListUsers(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	// A window that closed before either user existed holds neither.
	filter = dto.UserFilter{}
	filter.ToDate = ptr.To(now.Add(-time.Hour))
	page, err = store.ListUsers(ctx, filter)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalItems)
}

func TestListUsersSearchAndPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createUser(t, store, "ada@example.com")
	createUser(t, store, "grace@example.com")
	user, err := store.CreateUser(ctx, dto.CreateUserRequest{
		Email:     "linus@example.com",
		FirstName: "Linus",
		LastName:  "Torvalds",
	})
	require.NoError(t, err)

	filter := dto.UserFilter{}
	filter.SearchTerm = "LINUS"
	page, err := store.ListUsers(ctx, filter)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, user.ID, page.Items[0].ID)

	all, err := store.ListUsers(ctx, dto.UserFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalItems)
	assert.Equal(t, 1, all.TotalPages)
	assert.False(t, all.HasNextPage)
}

func TestUpdateListStampsLastModified(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")
	list := createList(t, store, owner.ID, "groceries")
	assert.Nil(t, list.LastModifiedAt)

	err := store.UpdateList(ctx, list.ID, dto.UpdateListRequest{
		Name:        "weekend groceries",
		Description: ptr.To("for saturday"),
	})
	require.NoError(t, err)

	got, err := store.FindListByID(ctx, list.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekend groceries", got.Name)
	require.NotNil(t, got.Description)
	assert.Equal(t, "for saturday", *got.Description)
	require.NotNil(t, got.LastModifiedAt)
	assert.WithinDuration(t, time.Now().UTC(), *got.LastModifiedAt, 5*time.Second)
}

func TestCreateListValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := createUser(t, store, "owner@example.com")

	_, err := store.CreateList(ctx, dto.CreateListRequest{Name: "   ", OwnerID: owner.ID})
	require.ErrorIs(t, err, domain.ErrNameRequired)

	_, err = store.CreateList(ctx, dto.CreateListRequest{Name: "ok", OwnerID: uuid.New()})
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
