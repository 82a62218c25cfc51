// Package grpcserver implements the read-only JobBoard gRPC service.
//
// It delegates all business logic to the domain services and handles only
// the gRPC transport concerns: metadata extraction, error mapping and
// conversion between domain types and google.protobuf.Struct messages.
package grpcserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"jobmate/jobboard-service/internal/catalog"
	"jobmate/jobboard-service/internal/model"
	"jobmate/jobboard-service/internal/tracker"
)

// JobFinder searches the listing catalogue.
type JobFinder interface {
	FindJobs(ctx context.Context, filter catalog.JobFilter, page int) (model.Page[model.ListingView], error)
}

// RecommendationReader serves stored recommendations.
type RecommendationReader interface {
	GetUserRecommendations(ctx context.Context, userID string, page int) (model.Page[model.RecommendationResult], error)
	GetRecommendationReason(ctx context.Context, userID, jobID string) (model.RecommendationReason, error)
}

// ApplicationLister lists a user's applications.
type ApplicationLister interface {
	List(ctx context.Context, userID, statusFilter string) ([]tracker.Application, error)
}

// Server implements JobBoardServer.
type Server struct {
	jobs         JobFinder
	recs         RecommendationReader
	applications ApplicationLister
	log          *zap.Logger
}

// NewServer constructs a gRPC Server backed by the given services.
func NewServer(jobs JobFinder, recs RecommendationReader, applications ApplicationLister, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{jobs: jobs, recs: recs, applications: applications, log: log.Named("grpc")}
}

// ─── RPC implementations ─────────────────────────────────────────────────────

// FindJobs searches listings. Request fields: category, location, salary,
// sourceId, page.
func (s *Server) FindJobs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := userIDFromCtx(ctx); err != nil {
		return nil, err
	}
	filter := catalog.JobFilter{
		Category: stringField(req, "category"),
		Location: stringField(req, "location"),
		Salary:   stringField(req, "salary"),
		SourceID: stringField(req, "sourceId"),
	}
	page, err := s.jobs.FindJobs(ctx, filter, intField(req, "page"))
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return toStruct(page)
}

// GetUserRecommendations returns one page of the caller's recommendations.
func (s *Server) GetUserRecommendations(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.recs.GetUserRecommendations(ctx, userID, intField(req, "page"))
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return toStruct(page)
}

// GetRecommendationReason explains one recommendation. Request field: jobId.
func (s *Server) GetRecommendationReason(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	jobID := stringField(req, "jobId")
	if jobID == "" {
		return nil, status.Error(codes.InvalidArgument, "jobId is required")
	}
	reason, err := s.recs.GetRecommendationReason(ctx, userID, jobID)
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return toStruct(reason)
}

// ListApplications returns all applications belonging to the caller.
// Request field: status (optional).
func (s *Server) ListApplications(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	apps, err := s.applications.List(ctx, userID, stringField(req, "status"))
	if err != nil {
		return nil, s.toGRPCError(err)
	}
	return toStruct(map[string]any{"applications": apps})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the Gateway
// via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || vals[0] == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return vals[0], nil
}

// toGRPCError maps domain errors to gRPC status errors.
func (s *Server) toGRPCError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, model.ErrDuplicate):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, model.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, model.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	}
	s.log.Error("rpc failed", zap.Error(err))
	return status.Error(codes.Internal, "internal server error")
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

func intField(req *structpb.Struct, name string) int {
	return int(req.GetFields()[name].GetNumberValue())
}

// toStruct converts a JSON-serialisable value into a Struct message.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("encode response: %v", err))
	}
	return out, nil
}
