package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "jobboard.v1.JobBoard"

// JobBoardServer is the server API of the JobBoard service. Every message is
// a google.protobuf.Struct.
type JobBoardServer interface {
	FindJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUserRecommendations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRecommendationReason(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListApplications(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Register mounts srv on s.
func Register(s grpc.ServiceRegistrar, srv JobBoardServer) {
	s.RegisterService(&serviceDesc, srv)
}

type rpc func(JobBoardServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call rpc) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(JobBoardServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(JobBoardServer), ctx, req.(*structpb.Struct))
		})
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*JobBoardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "FindJobs", Handler: unaryHandler("FindJobs", JobBoardServer.FindJobs)},
		{MethodName: "GetUserRecommendations", Handler: unaryHandler("GetUserRecommendations", JobBoardServer.GetUserRecommendations)},
		{MethodName: "GetRecommendationReason", Handler: unaryHandler("GetRecommendationReason", JobBoardServer.GetRecommendationReason)},
		{MethodName: "ListApplications", Handler: unaryHandler("ListApplications", JobBoardServer.ListApplications)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobboard/v1/jobboard.proto",
}
