package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Leganyst/booking-engine/internal/apperror"
)

// ServiceName — полное имя gRPC-сервиса.
const ServiceName = "booking.v1.BookingService"

// grpcMethods — операции, доступные по gRPC.
var grpcMethods = []string{
	OpCreateBooking,
	OpModifyBooking,
	OpCancelBooking,
	OpGetBookingDetails,
	OpCheckShiftConflict,
	OpListSpecialistsForWorkPoint,
	OpListWorkPointsForSpecialist,
	OpListServices,
	OpSaveWeeklyProgram,
	OpSaveTimeOff,
	OpChangeServiceDuration,
}

// BookingServiceServer — реализация сервиса поверх google.protobuf.Struct.
type BookingServiceServer interface {
	Invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc объявлен вручную: сообщения — google.protobuf.Struct.
func ServiceDesc() grpc.ServiceDesc {
	desc := grpc.ServiceDesc{
		ServiceName: ServiceName,
		HandlerType: (*BookingServiceServer)(nil),
		Streams:     []grpc.StreamDesc{},
		Metadata:    "booking/v1/booking.proto",
	}
	for _, name := range grpcMethods {
		desc.Methods = append(desc.Methods, grpc.MethodDesc{
			MethodName: name,
			Handler:    methodHandler(name),
		})
	}
	return desc
}

func methodHandler(name string) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return srv.(BookingServiceServer).Invoke(ctx, name, req.(*structpb.Struct))
		}
		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
		return interceptor(ctx, in, info, handler)
	}
}

// Invoke выполняет операцию. Ошибка — статус с кодом по классу ошибки,
// конверт ответа лежит в деталях статуса.
func (a *API) Invoke(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	actor, ok := ActorFrom(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Authentication required")
	}

	env, ae := a.invoke(ctx, actor, method, decodeMap(in.AsMap()))
	payload, err := env.normalize()
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to encode response")
	}
	out, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, status.Error(codes.Internal, "Failed to encode response")
	}
	if ae == nil {
		return out, nil
	}

	st := status.New(apperror.GRPCCode(ae.Kind), ae.Message)
	if withDetails, err := st.WithDetails(out); err == nil {
		st = withDetails
	}
	return nil, st.Err()
}

// unaryAuth кладёт AuthContext из метаданных authorization в контекст.
func (a *API) unaryAuth(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if info.Server != a {
		return handler(ctx, req)
	}
	md, _ := metadata.FromIncomingContext(ctx)
	var header string
	if values := md.Get("authorization"); len(values) > 0 {
		header = values[0]
	}
	actor, ok := a.authenticate(header)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "Authentication required")
	}
	return handler(withActor(ctx, actor), req)
}

// NewGRPCServer регистрирует сервис бронирований, health и reflection.
func (a *API) NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(a.unaryAuth))
	srv := grpc.NewServer(opts...)

	desc := ServiceDesc()
	srv.RegisterService(&desc, a)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	reflection.Register(srv)
	return srv
}
