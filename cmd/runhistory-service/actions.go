// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/runhistory/lib/history"
	historyschema "github.com/bureau-foundation/runhistory/lib/schema/history"
	"github.com/bureau-foundation/runhistory/lib/service"
)

// HistoryService answers socket requests from the provider's current
// snapshot. Every request reads exactly one snapshot, so a response
// never mixes two index states.
type HistoryService struct {
	provider *history.Provider
}

func (s *HistoryService) registerActions(server *service.SocketServer) {
	server.Handle(historyschema.ActionListApplications, s.handleListApplications)
	server.Handle(historyschema.ActionGetApplication, s.handleGetApplication)
	server.Handle(historyschema.ActionGetAttempt, s.handleGetAttempt)
	server.Handle(historyschema.ActionStatus, s.handleStatus)
}

func (s *HistoryService) handleListApplications(_ context.Context, raw []byte) (any, error) {
	request, err := service.Decode[historyschema.ListRequest](raw)
	if err != nil {
		return nil, err
	}
	if request.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", request.Limit)
	}

	snapshot := s.provider.Index().Snapshot()
	return historyschema.ListResponse{
		Applications: filterApplications(snapshot.Applications(), request),
		Total:        snapshot.Len(),
	}, nil
}

// filterApplications keeps index order. The completed filter looks at
// the latest attempt only.
func filterApplications(applications []historyschema.ApplicationRecord, request historyschema.ListRequest) []historyschema.ApplicationRecord {
	result := make([]historyschema.ApplicationRecord, 0, min(len(applications), max(request.Limit, 0)))
	for i := range applications {
		if request.Limit > 0 && len(result) == request.Limit {
			break
		}
		if request.Completed != nil && applications[i].Latest().Completed != *request.Completed {
			continue
		}
		result = append(result, applications[i])
	}
	return result
}

func (s *HistoryService) handleGetApplication(_ context.Context, raw []byte) (any, error) {
	request, err := service.Decode[historyschema.ApplicationRequest](raw)
	if err != nil {
		return nil, err
	}
	if request.AppID == "" {
		return nil, errors.New("app_id is required")
	}
	application, err := s.provider.Index().Snapshot().Application(request.AppID)
	if err != nil {
		return nil, lookupError(err)
	}
	return application, nil
}

func (s *HistoryService) handleGetAttempt(_ context.Context, raw []byte) (any, error) {
	request, err := service.Decode[historyschema.AttemptRequest](raw)
	if err != nil {
		return nil, err
	}
	if request.AppID == "" {
		return nil, errors.New("app_id is required")
	}
	attempt, err := s.provider.Index().Snapshot().Attempt(request.AppID, request.AttemptID)
	if err != nil {
		return nil, lookupError(err)
	}
	return attempt, nil
}

func (s *HistoryService) handleStatus(_ context.Context, _ []byte) (any, error) {
	return s.provider.Status(), nil
}

// lookupError marks index misses so the server answers with
// service.CodeNotFound.
func lookupError(err error) error {
	if errors.Is(err, history.ErrNotFound) {
		return service.NotFound(err)
	}
	return err
}
