package handler

import (
	"context"

	articledomain "community-grocery-go/internal/domain/article"
	communitydomain "community-grocery-go/internal/domain/community"
	orderdomain "community-grocery-go/internal/domain/order"
	userdomain "community-grocery-go/internal/domain/user"
	"community-grocery-go/pkg/logger"
)

type Handlers struct {
	Communities *communitydomain.Service
	Articles    *articledomain.Service
	Orders      *orderdomain.Service
	Users       *userdomain.Service
	log         logger.Logger
}

func New(communities *communitydomain.Service, articles *articledomain.Service, orders *orderdomain.Service, users *userdomain.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Communities: communities,
		Articles:    articles,
		Orders:      orders,
		Users:       users,
		log:         log,
	}
}

// logger returns the request-scoped logger when one was attached upstream.
func (h *Handlers) logger(ctx context.Context) logger.Logger {
	return logger.FromContext(ctx, h.log)
}
