package moderation

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"moderation-bot/model"
	"moderation-bot/utils/database/sanctions"
)

const (
	testGuild     = "g1"
	testModRole   = "role-mod"
	testJailRole  = "role-jail"
	testModerator = "mod-1"
	testTarget    = "user-1"
	testBotID     = "bot-1"
)

type timeoutCall struct {
	UserID string
	Until  time.Time
	Reason string
}

type fakeGateway struct {
	mu sync.Mutex

	members map[string]*model.Member
	roles   []model.Role

	memberErr   map[string]error
	timeoutErr  error
	setRolesErr error
	logErr      error

	setRolesCalls    int
	addRolesCalls    int
	removeRolesCalls int

	timeouts []timeoutCall
	kicked   []string
	banned   []string
	logs     []model.LogEntry
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		members: map[string]*model.Member{
			testModerator: {UserID: testModerator, GuildID: testGuild, Username: "mod", RoleIDs: []string{testModRole}},
			testTarget:    {UserID: testTarget, GuildID: testGuild, Username: "target", RoleIDs: []string{"role-member", "role-vip"}},
			testBotID:     {UserID: testBotID, GuildID: testGuild, Username: "modbot", Bot: true, RoleIDs: []string{"role-bot"}},
			"other-bot":   {UserID: "other-bot", GuildID: testGuild, Username: "helper", Bot: true},
			"boss":        {UserID: "boss", GuildID: testGuild, Username: "boss", RoleIDs: []string{"role-admin"}},
			"plain":       {UserID: "plain", GuildID: testGuild, Username: "plain", RoleIDs: []string{"role-member"}},
		},
		roles: []model.Role{
			{ID: testGuild, Name: "@everyone", Position: 0},
			{ID: "role-member", Name: "member", Position: 1},
			{ID: "role-vip", Name: "vip", Position: 2},
			{ID: testJailRole, Name: "jail", Position: 3},
			{ID: testModRole, Name: "moderator", Position: 5},
			{ID: "role-bot", Name: "bot", Position: 10, Managed: true},
			{ID: "role-admin", Name: "admin", Position: 20},
		},
		memberErr: map[string]error{},
	}
}

func (f *fakeGateway) Member(_ context.Context, guildID, userID string) (*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.memberErr[userID]; err != nil {
		return nil, err
	}
	m, ok := f.members[userID]
	if !ok || guildID != testGuild {
		return nil, ErrNotFound
	}
	cp := *m
	cp.RoleIDs = append([]string(nil), m.RoleIDs...)
	return &cp, nil
}

func (f *fakeGateway) BotMember(ctx context.Context, guildID string) (*model.Member, error) {
	return f.Member(ctx, guildID, testBotID)
}

func (f *fakeGateway) GuildRoles(_ context.Context, _ string) ([]model.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Role(nil), f.roles...), nil
}

func (f *fakeGateway) SetMemberRoles(_ context.Context, _, userID string, roleIDs []string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setRolesCalls++
	if f.setRolesErr != nil {
		return f.setRolesErr
	}
	f.members[userID].RoleIDs = append([]string(nil), roleIDs...)
	return nil
}

func (f *fakeGateway) AddRoles(_ context.Context, _, userID string, roleIDs []string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addRolesCalls++
	m := f.members[userID]
	m.RoleIDs = append(m.RoleIDs, roleIDs...)
	return nil
}

func (f *fakeGateway) RemoveRoles(_ context.Context, _, userID string, roleIDs []string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeRolesCalls++
	m := f.members[userID]
	kept := m.RoleIDs[:0]
	for _, id := range m.RoleIDs {
		drop := false
		for _, r := range roleIDs {
			if id == r {
				drop = true
			}
		}
		if !drop {
			kept = append(kept, id)
		}
	}
	m.RoleIDs = kept
	return nil
}

func (f *fakeGateway) TimeoutMember(_ context.Context, _, userID string, until time.Time, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timeoutErr != nil {
		return f.timeoutErr
	}
	f.timeouts = append(f.timeouts, timeoutCall{UserID: userID, Until: until, Reason: reason})
	return nil
}

func (f *fakeGateway) KickMember(_ context.Context, _, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kicked = append(f.kicked, userID)
	return nil
}

func (f *fakeGateway) BanMember(_ context.Context, _, userID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeGateway) SendLog(_ context.Context, _ string, entry model.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logErr != nil {
		return f.logErr
	}
	f.logs = append(f.logs, entry)
	return nil
}

// roleCalls returns how many role edits of any kind were made.
func (f *fakeGateway) roleCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setRolesCalls + f.addRolesCalls + f.removeRolesCalls
}

func (f *fakeGateway) roleIDs(userID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.members[userID].RoleIDs...)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	mod   *Moderator
	gw    *fakeGateway
	store *sanctions.Store
	clock *testClock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)}
	store, err := sanctions.Open(filepath.Join(t.TempDir(), "mod.db"), sanctions.WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	gw := newFakeGateway()
	settings := model.GuildSettings{
		ModeratorRoleID: testModRole,
		JailRoleID:      testJailRole,
		LogChannelID:    "log-channel",
	}
	mod := New(store, gw, settings, WithClock(clock.Now))
	return &harness{mod: mod, gw: gw, store: store, clock: clock}
}

func (h *harness) warn(t *testing.T, category model.Category) *WarnResult {
	t.Helper()
	res, err := h.mod.Warn(context.Background(), WarnRequest{
		GuildID:  testGuild,
		ActorID:  testModerator,
		TargetID: testTarget,
		Category: category,
	})
	require.NoError(t, err)
	return res
}
