package domain

import "context"

type NodeService interface {
	Search(ctx context.Context, query string, networks []int64) ([]string, error)
	GetNode(ctx context.Context, vid string) (NodeDetails, error)
	History(ctx context.Context, vid string, field string) ([]HistoryEntry, error)
	CreateNode(ctx context.Context, input CreateNodeInput) (Node, error)
	UpdateNode(ctx context.Context, vid string, input UpdateNodeInput) (Node, error)
	DeleteNode(ctx context.Context, vid string) error
}
