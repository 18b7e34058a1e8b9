package community

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCommunityRepo struct {
	communities map[string]*Community
	users       map[string]*string
	profiles    map[string]Profile
	conflicts   int
	saves       int
}

func newFakeCommunityRepo() *fakeCommunityRepo {
	return &fakeCommunityRepo{
		communities: make(map[string]*Community),
		users:       make(map[string]*string),
		profiles:    make(map[string]Profile),
	}
}

func (r *fakeCommunityRepo) addUser(userID, name string, communityID *string) {
	r.users[userID] = communityID
	r.profiles[userID] = Profile{UserID: userID, Name: name, Email: userID + "@example.com"}
}

func (r *fakeCommunityRepo) seed(id string, choices map[string]DeliveryTime, order ...string) *Community {
	community := &Community{
		ID:           id,
		Name:         "Community " + id,
		DeliveryDay:  Monday,
		DeliveryTime: Morning,
		Version:      1,
	}
	for i, userID := range order {
		community.Members = append(community.Members, Member{
			CommunityID:  id,
			UserID:       userID,
			DeliveryTime: choices[userID],
			Position:     i,
			JoinedAt:     time.Date(2026, 1, 1, 0, i, 0, 0, time.UTC),
		})
		ref := id
		r.addUser(userID, "User "+userID, &ref)
	}
	community.recompute()
	r.communities[id] = community
	return community
}

func cloneCommunity(c *Community) *Community {
	clone := *c
	clone.Members = append([]Member(nil), c.Members...)
	return &clone
}

// Transaction restores the previous state when fn fails.
func (r *fakeCommunityRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	communities := make(map[string]*Community, len(r.communities))
	for id, c := range r.communities {
		communities[id] = cloneCommunity(c)
	}
	users := make(map[string]*string, len(r.users))
	for id, ref := range r.users {
		users[id] = ref
	}

	if err := fn(r); err != nil {
		r.communities = communities
		r.users = users
		return err
	}
	return nil
}

func (r *fakeCommunityRepo) GetCommunity(ctx context.Context, communityID string) (*Community, error) {
	c, ok := r.communities[communityID]
	if !ok {
		return nil, ErrCommunityNotFound
	}
	return cloneCommunity(c), nil
}

func (r *fakeCommunityRepo) ListCommunities(ctx context.Context) ([]Community, error) {
	result := make([]Community, 0, len(r.communities))
	for _, c := range r.communities {
		result = append(result, *cloneCommunity(c))
	}
	return result, nil
}

func (r *fakeCommunityRepo) CreateCommunity(ctx context.Context, community *Community) error {
	r.communities[community.ID] = cloneCommunity(community)
	return nil
}

func (r *fakeCommunityRepo) SaveCommunity(ctx context.Context, community *Community) error {
	if r.conflicts > 0 {
		r.conflicts--
		return ErrVersionConflict
	}
	stored, ok := r.communities[community.ID]
	if !ok {
		return ErrCommunityNotFound
	}
	if stored.Version != community.Version {
		return ErrVersionConflict
	}
	community.Version++
	r.communities[community.ID] = cloneCommunity(community)
	r.saves++
	return nil
}

func (r *fakeCommunityRepo) GetUserCommunity(ctx context.Context, userID string) (*string, error) {
	ref, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return ref, nil
}

func (r *fakeCommunityRepo) SetUserCommunity(ctx context.Context, userID string, communityID *string) error {
	if _, ok := r.users[userID]; !ok {
		return ErrUserNotFound
	}
	if communityID == nil {
		r.users[userID] = nil
		return nil
	}
	ref := *communityID
	r.users[userID] = &ref
	return nil
}

func (r *fakeCommunityRepo) ListProfiles(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	result := make(map[string]Profile, len(userIDs))
	for _, id := range userIDs {
		if profile, ok := r.profiles[id]; ok {
			result[id] = profile
		}
	}
	return result, nil
}

type fakeCache struct {
	items   map[string]*Details
	deletes []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[string]*Details)}
}

func (c *fakeCache) Get(ctx context.Context, id string) (*Details, bool) {
	d, ok := c.items[id]
	return d, ok
}

func (c *fakeCache) Set(ctx context.Context, id string, d *Details, ttl time.Duration) {
	if current, ok := c.items[id]; ok && current.Community.Version > d.Community.Version {
		return
	}
	c.items[id] = d
}

func (c *fakeCache) Delete(ctx context.Context, id string) {
	delete(c.items, id)
	c.deletes = append(c.deletes, id)
}

type fakePublisher struct {
	events []Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

func rosterIDs(c *Community) []string {
	ids := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

func TestCreateCommunitySuccess(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.addUser("founder", "Founder", nil)
	svc := NewService(repo)

	result, err := svc.CreateCommunity(context.Background(), CreateInput{
		FounderID: "founder",
		Name:      "  Elm Street  ",
		Location:  Point{Longitude: 13.4, Latitude: 52.5},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Community.Name != "Elm Street" {
		t.Fatalf("expected trimmed name, got %q", result.Community.Name)
	}
	if result.Community.DeliveryDay != Monday || result.Community.DeliveryTime != Morning {
		t.Fatalf("expected default preferences, got %+v", result.Community.Preferences())
	}
	if len(result.Members) != 1 || result.Members[0].UserID != "founder" || result.Members[0].DeliveryTime != Morning {
		t.Fatalf("expected founder as only member with Morning, got %+v", result.Members)
	}
	if result.Members[0].Name != "Founder" {
		t.Fatalf("expected member name resolved, got %q", result.Members[0].Name)
	}
	ref := repo.users["founder"]
	if ref == nil || *ref != result.Community.ID {
		t.Fatalf("expected founder back-reference to %s, got %v", result.Community.ID, ref)
	}
}

func TestCreateCommunityFounderInAnotherCommunity(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"founder": Morning}, "founder")
	svc := NewService(repo)

	_, err := svc.CreateCommunity(context.Background(), CreateInput{FounderID: "founder", Name: "Second"})
	if !errors.Is(err, ErrAlreadyInAnotherCommunity) {
		t.Fatalf("expected ErrAlreadyInAnotherCommunity, got %v", err)
	}
	if len(repo.communities) != 1 {
		t.Fatalf("expected no new community, got %d", len(repo.communities))
	}
}

func TestCreateCommunityValidation(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.addUser("founder", "Founder", nil)
	svc := NewService(repo)

	if _, err := svc.CreateCommunity(context.Background(), CreateInput{FounderID: "founder", Name: "  "}); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	_, err := svc.CreateCommunity(context.Background(), CreateInput{
		FounderID: "founder",
		Name:      "Elm",
		Location:  Point{Longitude: 181, Latitude: 0},
	})
	if !errors.Is(err, ErrInvalidLocation) {
		t.Fatalf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestJoinSuccess(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"owner": Evening}, "owner")
	repo.addUser("user-1", "Alice", nil)
	svc := NewService(repo)

	result, err := svc.Join(context.Background(), "c-1", "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(result.Members))
	}
	joined := result.Members[1]
	if joined.UserID != "user-1" || joined.DeliveryTime != Morning || joined.Name != "Alice" {
		t.Fatalf("unexpected joined member %+v", joined)
	}
	ref := repo.users["user-1"]
	if ref == nil || *ref != "c-1" {
		t.Fatalf("expected back-reference c-1, got %v", ref)
	}
	// Evening and Morning tie at one vote each, Morning is checked first.
	if repo.communities["c-1"].DeliveryTime != Morning {
		t.Fatalf("expected Morning after join, got %s", repo.communities["c-1"].DeliveryTime)
	}
}

func TestJoinCommunityNotFound(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.addUser("user-1", "Alice", nil)
	svc := NewService(repo)

	_, err := svc.Join(context.Background(), "missing", "user-1")
	if !errors.Is(err, ErrCommunityNotFound) {
		t.Fatalf("expected ErrCommunityNotFound, got %v", err)
	}
}

func TestJoinTwiceRejected(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"owner": Morning}, "owner")
	repo.addUser("user-1", "Alice", nil)
	svc := NewService(repo)

	if _, err := svc.Join(context.Background(), "c-1", "user-1"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	_, err := svc.Join(context.Background(), "c-1", "user-1")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
	if got := len(repo.communities["c-1"].Members); got != 2 {
		t.Fatalf("expected roster of 2, got %d", got)
	}
}

func TestJoinAlreadyInAnotherCommunity(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"owner": Morning}, "owner")
	repo.seed("c-2", map[string]DeliveryTime{"user-1": Morning}, "user-1")
	svc := NewService(repo)

	_, err := svc.Join(context.Background(), "c-1", "user-1")
	if !errors.Is(err, ErrAlreadyInAnotherCommunity) {
		t.Fatalf("expected ErrAlreadyInAnotherCommunity, got %v", err)
	}
	if repo.communities["c-1"].HasMember("user-1") {
		t.Fatalf("expected roster unchanged")
	}
}

func TestJoinThenLeaveRestoresRoster(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Afternoon, "b": Evening}, "a", "b")
	repo.addUser("user-1", "Alice", nil)
	before := rosterIDs(repo.communities["c-1"])
	svc := NewService(repo)

	if _, err := svc.Join(context.Background(), "c-1", "user-1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := svc.Leave(context.Background(), "c-1", "user-1"); err != nil {
		t.Fatalf("leave: %v", err)
	}

	after := rosterIDs(repo.communities["c-1"])
	if len(after) != len(before) || after[0] != before[0] || after[1] != before[1] {
		t.Fatalf("expected roster %v, got %v", before, after)
	}
	if repo.users["user-1"] != nil {
		t.Fatalf("expected back-reference cleared, got %v", *repo.users["user-1"])
	}
}

func TestLeaveNonMemberIsNoop(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"owner": Morning}, "owner")
	repo.addUser("user-1", "Alice", nil)
	svc := NewService(repo)

	if err := svc.Leave(context.Background(), "c-1", "user-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if repo.saves != 0 {
		t.Fatalf("expected no write, got %d saves", repo.saves)
	}
	if repo.communities["c-1"].Version != 1 {
		t.Fatalf("expected version unchanged, got %d", repo.communities["c-1"].Version)
	}
}

func TestLeaveCommunityNotFound(t *testing.T) {
	svc := NewService(newFakeCommunityRepo())
	if err := svc.Leave(context.Background(), "missing", "user-1"); !errors.Is(err, ErrCommunityNotFound) {
		t.Fatalf("expected ErrCommunityNotFound, got %v", err)
	}
}

func TestLeaveRecomputesPreference(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning, "b": Evening, "c": Evening}, "a", "b", "c")
	if repo.communities["c-1"].DeliveryTime != Evening {
		t.Fatalf("precondition: expected Evening")
	}
	svc := NewService(repo)

	if err := svc.Leave(context.Background(), "c-1", "b"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := repo.communities["c-1"].DeliveryTime; got != Morning {
		t.Fatalf("expected Morning after leave, got %s", got)
	}
}

func TestLeaveLastMemberKeepsPreference(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Evening}, "a")
	svc := NewService(repo)

	if err := svc.Leave(context.Background(), "c-1", "a"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	stored, ok := repo.communities["c-1"]
	if !ok {
		t.Fatalf("expected community to remain")
	}
	if len(stored.Members) != 0 {
		t.Fatalf("expected empty roster, got %d", len(stored.Members))
	}
	if stored.DeliveryTime != Evening {
		t.Fatalf("expected last computed Evening, got %s", stored.DeliveryTime)
	}
}

func TestVoteRecomputesPreference(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning, "b": Evening, "c": Morning}, "a", "b", "c")
	svc := NewService(repo)

	votes, err := svc.Vote(context.Background(), "c-1", "a", Evening)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if votes.Preferences.DeliveryTime != Evening {
		t.Fatalf("expected Evening, got %s", votes.Preferences.DeliveryTime)
	}
	if votes.Members[0].DeliveryTime != Evening {
		t.Fatalf("expected member choice updated, got %s", votes.Members[0].DeliveryTime)
	}
	if repo.communities["c-1"].Version != 2 {
		t.Fatalf("expected version bump, got %d", repo.communities["c-1"].Version)
	}
}

func TestVoteNonMemberForbidden(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	repo.addUser("outsider", "Outsider", nil)
	svc := NewService(repo)

	_, err := svc.Vote(context.Background(), "c-1", "outsider", Evening)
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
	stored := repo.communities["c-1"]
	if len(stored.Members) != 1 || stored.Members[0].DeliveryTime != Morning || stored.DeliveryTime != Morning {
		t.Fatalf("expected community unchanged, got %+v", stored)
	}
}

func TestVoteInvalidChoice(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	svc := NewService(repo)

	_, err := svc.Vote(context.Background(), "c-1", "a", DeliveryTime("Midnight"))
	if !errors.Is(err, ErrInvalidDeliveryTime) {
		t.Fatalf("expected ErrInvalidDeliveryTime, got %v", err)
	}
}

func TestVoteRetriesOnVersionConflict(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	repo.conflicts = 2
	svc := NewService(repo, WithVersionRetries(3))

	votes, err := svc.Vote(context.Background(), "c-1", "a", Afternoon)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if votes.Preferences.DeliveryTime != Afternoon {
		t.Fatalf("expected Afternoon, got %s", votes.Preferences.DeliveryTime)
	}
}

func TestVoteGivesUpAfterRetries(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	repo.conflicts = 5
	svc := NewService(repo, WithVersionRetries(3))

	_, err := svc.Vote(context.Background(), "c-1", "a", Afternoon)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
	if repo.conflicts != 2 {
		t.Fatalf("expected 3 attempts, %d conflicts left", repo.conflicts)
	}
	if repo.communities["c-1"].Members[0].DeliveryTime != Morning {
		t.Fatalf("expected vote not applied")
	}
}

func TestUpdatePreferencesOverridesUntilNextVote(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning, "b": Morning}, "a", "b")
	svc := NewService(repo)

	prefs, err := svc.UpdatePreferences(context.Background(), "c-1", Friday, Evening)
	if err != nil {
		t.Fatalf("update preferences: %v", err)
	}
	if prefs.DeliveryDay != Friday || prefs.DeliveryTime != Evening {
		t.Fatalf("unexpected preferences %+v", prefs)
	}

	votes, err := svc.Vote(context.Background(), "c-1", "a", Afternoon)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	if votes.Preferences.DeliveryTime != Morning {
		t.Fatalf("expected vote to recompute Morning, got %s", votes.Preferences.DeliveryTime)
	}
	if votes.Preferences.DeliveryDay != Friday {
		t.Fatalf("expected day override kept, got %s", votes.Preferences.DeliveryDay)
	}
}

func TestUpdatePreferencesInvalidDay(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	svc := NewService(repo)

	_, err := svc.UpdatePreferences(context.Background(), "c-1", DeliveryDay("Someday"), Morning)
	if !errors.Is(err, ErrInvalidDeliveryDay) {
		t.Fatalf("expected ErrInvalidDeliveryDay, got %v", err)
	}
}

func TestGetVotesNotFound(t *testing.T) {
	svc := NewService(newFakeCommunityRepo())
	if _, err := svc.GetVotes(context.Background(), "missing"); !errors.Is(err, ErrCommunityNotFound) {
		t.Fatalf("expected ErrCommunityNotFound, got %v", err)
	}
}

func TestGetCommunityUsesCacheAndMutationsRefresh(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	cache := newFakeCache()
	svc := NewService(repo, WithCache(cache, time.Minute))

	if _, err := svc.GetCommunity(context.Background(), "c-1"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := cache.items["c-1"]; !ok {
		t.Fatalf("expected details cached")
	}

	if _, err := svc.Vote(context.Background(), "c-1", "a", Evening); err != nil {
		t.Fatalf("vote: %v", err)
	}
	cached, ok := cache.items["c-1"]
	if !ok || cached.Community.DeliveryTime != Evening || cached.Community.Version != 2 {
		t.Fatalf("expected cache refreshed with the committed vote, got %+v", cached)
	}
	if len(cache.deletes) != 0 {
		t.Fatalf("expected no invalidation, got %v", cache.deletes)
	}

	votes, err := svc.GetVotes(context.Background(), "c-1")
	if err != nil {
		t.Fatalf("get votes: %v", err)
	}
	if votes.Preferences.DeliveryTime != Evening {
		t.Fatalf("expected fresh read after vote, got %s", votes.Preferences.DeliveryTime)
	}
}

func TestEventsPublishedAndFailuresIgnored(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	repo.addUser("user-1", "Alice", nil)
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewService(repo, WithPublisher(publisher))

	if _, err := svc.Join(context.Background(), "c-1", "user-1"); err != nil {
		t.Fatalf("join should not fail on publish error: %v", err)
	}
	if _, err := svc.Vote(context.Background(), "c-1", "user-1", Evening); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(publisher.events))
	}
	if publisher.events[0].Type != EventMemberJoined || publisher.events[1].Type != EventVoteCast {
		t.Fatalf("unexpected event types %s, %s", publisher.events[0].Type, publisher.events[1].Type)
	}
	if publisher.events[1].Version != 3 {
		t.Fatalf("expected version 3 on vote event, got %d", publisher.events[1].Version)
	}
}

func TestListCommunitiesResolvesMembers(t *testing.T) {
	repo := newFakeCommunityRepo()
	repo.seed("c-1", map[string]DeliveryTime{"a": Morning}, "a")
	repo.seed("c-2", map[string]DeliveryTime{"b": Evening}, "b")
	svc := NewService(repo)

	list, err := svc.ListCommunities(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 communities, got %d", len(list))
	}
	for _, item := range list {
		if len(item.Members) != 1 || item.Members[0].Name == "" {
			t.Fatalf("expected resolved member for %s, got %+v", item.Community.ID, item.Members)
		}
	}
}
