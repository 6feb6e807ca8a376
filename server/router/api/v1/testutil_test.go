package v1

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/buddylabs/buddy/internal/ambient"
	"github.com/buddylabs/buddy/internal/profile"
	"github.com/buddylabs/buddy/plugin/ai"
	"github.com/buddylabs/buddy/plugin/content"
	"github.com/buddylabs/buddy/server/auth"
	"github.com/buddylabs/buddy/server/middleware"
	"github.com/buddylabs/buddy/store"
)

const testSecret = "test-secret"

// fakeDriver is an in-memory store.Driver for handler tests.
type fakeDriver struct {
	mu sync.Mutex

	nextUserID    int32
	nextMessageID int32

	users            map[int32]*store.User
	parentalControls map[int32]*store.ParentalControl
	conversations    map[string]*store.Conversation
	messages         []*store.ConversationMessage
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		nextUserID:       1,
		nextMessageID:    1,
		users:            make(map[int32]*store.User),
		parentalControls: make(map[int32]*store.ParentalControl),
		conversations:    make(map[string]*store.Conversation),
	}
}

func (d *fakeDriver) GetDB() *sql.DB { return nil }
func (d *fakeDriver) Close() error   { return nil }

func (d *fakeDriver) IsInitialized(ctx context.Context) (bool, error) { return true, nil }
func (d *fakeDriver) Migrate(ctx context.Context) error              { return nil }

func (d *fakeDriver) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user := *create
	user.ID = d.nextUserID
	d.nextUserID++
	d.users[user.ID] = &user
	copied := user
	return &copied, nil
}

func (d *fakeDriver) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.User{}
	for _, u := range d.users {
		if find.ID != nil && u.ID != *find.ID {
			continue
		}
		if find.Name != nil && u.Name != *find.Name {
			continue
		}
		copied := *u
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (d *fakeDriver) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.users[update.ID]
	u.UpdatedTs = update.UpdatedTs
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Age != nil {
		u.Age = *update.Age
	}
	if update.Locale != nil {
		u.Locale = *update.Locale
	}
	if update.Interests != nil {
		u.Interests = *update.Interests
	}
	copied := *u
	return &copied, nil
}

func (d *fakeDriver) DeleteUser(ctx context.Context, del *store.DeleteUser) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, del.ID)
	delete(d.parentalControls, del.ID)
	return nil
}

func (d *fakeDriver) UpsertParentalControl(ctx context.Context, upsert *store.ParentalControl) (*store.ParentalControl, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := *upsert
	d.parentalControls[upsert.UserID] = &copied
	result := copied
	return &result, nil
}

func (d *fakeDriver) GetParentalControl(ctx context.Context, find *store.FindParentalControl) (*store.ParentalControl, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if find.UserID == nil {
		return nil, nil
	}
	pc, ok := d.parentalControls[*find.UserID]
	if !ok {
		return nil, nil
	}
	copied := *pc
	return &copied, nil
}

func (d *fakeDriver) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	copied := *create
	d.conversations[create.ID] = &copied
	result := copied
	return &result, nil
}

func (d *fakeDriver) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.Conversation{}
	for _, conv := range d.conversations {
		if find.ID != nil && conv.ID != *find.ID {
			continue
		}
		if find.UserID != nil && conv.UserID != *find.UserID {
			continue
		}
		copied := *conv
		list = append(list, &copied)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedTs > list[j].CreatedTs })
	return list, nil
}

func (d *fakeDriver) UpdateConversation(ctx context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	conv := d.conversations[update.ID]
	conv.UpdatedTs = update.UpdatedTs
	if update.EndedTs != nil {
		conv.EndedTs = update.EndedTs
	}
	copied := *conv
	return &copied, nil
}

func (d *fakeDriver) DeleteConversation(ctx context.Context, del *store.DeleteConversation) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conversations, del.ID)
	kept := d.messages[:0]
	for _, m := range d.messages {
		if m.ConversationID != del.ID {
			kept = append(kept, m)
		}
	}
	d.messages = kept
	return nil
}

func (d *fakeDriver) CreateConversationMessage(ctx context.Context, create *store.ConversationMessage) (*store.ConversationMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	message := *create
	message.ID = d.nextMessageID
	d.nextMessageID++
	d.messages = append(d.messages, &message)
	copied := message
	return &copied, nil
}

func (d *fakeDriver) ListConversationMessages(ctx context.Context, find *store.FindConversationMessage) ([]*store.ConversationMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := []*store.ConversationMessage{}
	for _, m := range d.messages {
		if find.ConversationID != nil && m.ConversationID != *find.ConversationID {
			continue
		}
		copied := *m
		list = append(list, &copied)
	}
	return list, nil
}

var _ store.Driver = (*fakeDriver)(nil)

// testEnv bundles everything a handler test needs.
type testEnv struct {
	echo    *echo.Echo
	service *APIV1Service
	driver  *fakeDriver
	llm     *ai.MockLLMService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testProfile := &profile.Profile{
		Mode:   "dev",
		Driver: "fake",
		Secret: testSecret,
	}
	driver := newFakeDriver()
	testStore := store.New(driver, testProfile)
	tracker := ambient.NewTracker(ambient.Config{}, nil)

	llm := ai.NewMockLLMService()
	service := &APIV1Service{
		Secret:        testSecret,
		Profile:       testProfile,
		Store:         testStore,
		Tracker:       tracker,
		LLMService:    llm,
		Sourcer:       content.NewSourcer(llm),
		deviceLimiter: middleware.NewRateLimiter(time.Millisecond, 1000),
		sessions:      newSessionRegistry(),
	}

	e := echo.New()
	service.RegisterRoutes(e)

	return &testEnv{echo: e, service: service, driver: driver, llm: llm}
}

// mustCreateUser seeds a user directly through the store.
func (env *testEnv) mustCreateUser(t *testing.T, name string, age int) *store.User {
	t.Helper()
	user, err := env.service.Store.CreateUser(context.Background(), &store.User{
		CreatedTs: time.Now().Unix(),
		UpdatedTs: time.Now().Unix(),
		Name:      name,
		Age:       age,
		Locale:    "en-US",
	})
	require.NoError(t, err)
	return user
}

// doRequest performs one request against the test router.
func (env *testEnv) doRequest(t *testing.T, method, path string, body io.Reader, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authed {
		token, err := auth.GenerateAccessToken(1, "parent", time.Now().Add(time.Hour), []byte(testSecret))
		require.NoError(t, err)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a response body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
