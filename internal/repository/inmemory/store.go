package inmemory

import (
	"sync"

	articledomain "community-grocery-go/internal/domain/article"
	communitydomain "community-grocery-go/internal/domain/community"
	orderdomain "community-grocery-go/internal/domain/order"
	userdomain "community-grocery-go/internal/domain/user"
)

// Store is the process-local storage backend. Transactions run under the store
// lock against a copy of the data that replaces the live copy on success.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

type dataset struct {
	users       map[string]userdomain.User
	communities map[string]communitydomain.Community
	articles    map[string]articledomain.Article
	orders      map[string]orderdomain.Order
}

func NewStore() *Store {
	return &Store{data: &dataset{
		users:       make(map[string]userdomain.User),
		communities: make(map[string]communitydomain.Community),
		articles:    make(map[string]articledomain.Article),
		orders:      make(map[string]orderdomain.Order),
	}}
}

func (s *Store) Communities() *CommunityRepository {
	return &CommunityRepository{store: s}
}

func (s *Store) Articles() *ArticleRepository {
	return &ArticleRepository{store: s}
}

func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{store: s}
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// view runs fn against tx when inside a transaction, otherwise against the
// live data under the lock.
func (s *Store) view(tx *dataset, fn func(*dataset) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) transaction(tx *dataset, fn func(*dataset) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (d *dataset) clone() *dataset {
	clone := &dataset{
		users:       make(map[string]userdomain.User, len(d.users)),
		communities: make(map[string]communitydomain.Community, len(d.communities)),
		articles:    make(map[string]articledomain.Article, len(d.articles)),
		orders:      make(map[string]orderdomain.Order, len(d.orders)),
	}
	for id, user := range d.users {
		clone.users[id] = cloneUser(user)
	}
	for id, community := range d.communities {
		clone.communities[id] = cloneCommunity(community)
	}
	for id, article := range d.articles {
		clone.articles[id] = article
	}
	for id, order := range d.orders {
		clone.orders[id] = cloneOrder(order)
	}
	return clone
}

func cloneUser(user userdomain.User) userdomain.User {
	if user.CommunityID != nil {
		communityID := *user.CommunityID
		user.CommunityID = &communityID
	}
	return user
}

func cloneCommunity(community communitydomain.Community) communitydomain.Community {
	community.Members = append([]communitydomain.Member(nil), community.Members...)
	return community
}

func cloneOrder(order orderdomain.Order) orderdomain.Order {
	order.Items = append([]orderdomain.Item(nil), order.Items...)
	return order
}
