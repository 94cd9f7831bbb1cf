package domain

import (
	"context"
	"log/slog"
)

type loggingNodeService struct {
	logger *slog.Logger
	next   NodeService
}

func NewLoggingNodeService(logger *slog.Logger, next NodeService) NodeService {
	if logger == nil || next == nil {
		return next
	}

	return &loggingNodeService{
		logger: logger,
		next:   next,
	}
}

func (s *loggingNodeService) Search(ctx context.Context, query string, networks []int64) ([]string, error) {
	vids, err := s.next.Search(ctx, query, networks)
	if err != nil {
		s.logger.ErrorContext(ctx, "search failed", "query", query, "err", err.Error())
		return nil, err
	}

	s.logger.DebugContext(ctx, "search completed", "query", query, "networks", networks, "results", len(vids))
	return vids, nil
}

func (s *loggingNodeService) GetNode(ctx context.Context, vid string) (NodeDetails, error) {
	node, err := s.next.GetNode(ctx, vid)
	if err != nil {
		s.logger.ErrorContext(ctx, "get node failed", "vid", vid, "err", err.Error())
	}
	return node, err
}

func (s *loggingNodeService) History(ctx context.Context, vid string, field string) ([]HistoryEntry, error) {
	entries, err := s.next.History(ctx, vid, field)
	if err != nil {
		s.logger.ErrorContext(ctx, "history failed", "vid", vid, "field", field, "err", err.Error())
		return nil, err
	}

	s.logger.DebugContext(ctx, "history reconstructed", "vid", vid, "field", field, "entries", len(entries))
	return entries, nil
}

func (s *loggingNodeService) CreateNode(ctx context.Context, input CreateNodeInput) (Node, error) {
	node, err := s.next.CreateNode(ctx, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "create node failed", "vid", input.VID, "err", err.Error())
		return Node{}, err
	}

	s.logger.InfoContext(ctx, "node created", "id", node.ID, "vid", node.VID)
	return node, nil
}

func (s *loggingNodeService) UpdateNode(ctx context.Context, vid string, input UpdateNodeInput) (Node, error) {
	node, err := s.next.UpdateNode(ctx, vid, input)
	if err != nil {
		s.logger.ErrorContext(ctx, "update node failed", "vid", vid, "err", err.Error())
		return Node{}, err
	}

	s.logger.InfoContext(ctx, "node updated", "id", node.ID, "vid", vid)
	return node, nil
}

func (s *loggingNodeService) DeleteNode(ctx context.Context, vid string) error {
	err := s.next.DeleteNode(ctx, vid)
	if err != nil {
		s.logger.ErrorContext(ctx, "delete node failed", "vid", vid, "err", err.Error())
		return err
	}

	s.logger.InfoContext(ctx, "node deleted", "vid", vid)
	return nil
}
