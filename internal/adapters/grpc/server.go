package grpc

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/civicid/sso-service/internal/application"
)

// SSOInternalService is the service-to-service surface. Relying
// agencies validate bearer tokens here instead of parsing JWTs
// themselves, so revocation and lock state are always enforced.
type SSOInternalService interface {
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TerminateUserSessions(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type SSOInternalServer struct {
	service *application.Service
}

func NewSSOInternalServer(service *application.Service) *SSOInternalServer {
	return &SSOInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc SSOInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "civicid.sso.v1.SSOInternalService",
		HandlerType: (*SSOInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidateToken",
				Handler:    validateTokenHandler(svc),
			},
			{
				MethodName: "TerminateUserSessions",
				Handler:    terminateUserSessionsHandler(svc),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "proto/sso/v1/sso_internal.proto",
	}, svc)
}

func (s *SSOInternalServer) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	tokenVal := req.GetFields()["token"]
	if tokenVal == nil {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}
	token := tokenVal.GetStringValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}

	principal, err := s.service.Authenticate(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"valid":      true,
		"user_id":    principal.UserID.String(),
		"role":       string(principal.Role),
		"session_id": principal.SessionID.String(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *SSOInternalServer) TerminateUserSessions(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	userVal := req.GetFields()["user_id"]
	if userVal == nil {
		return nil, status.Error(codes.InvalidArgument, "missing user_id")
	}
	userID, err := uuid.Parse(userVal.GetStringValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "invalid user_id")
	}

	count, err := s.service.TerminateAllSessions(ctx, userID, nil, application.ClientMeta{UserAgent: "grpc-internal"})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "terminate sessions: %v", err)
	}

	resp, err := structpb.NewStruct(map[string]any{
		"terminated": count,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func validateTokenHandler(svc SSOInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.ValidateToken(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/civicid.sso.v1.SSOInternalService/ValidateToken",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.ValidateToken(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}

func terminateUserSessionsHandler(svc SSOInternalService) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return svc.TerminateUserSessions(ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/civicid.sso.v1.SSOInternalService/TerminateUserSessions",
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return svc.TerminateUserSessions(ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
