package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "ledger.v1.LedgerService"

// LedgerServiceServer is the server API for ledger.v1.LedgerService.
// Every request and response is a google.protobuf.Struct.
type LedgerServiceServer interface {
	CreateTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransactions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBalance(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCategoryBreakdown(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistoryPeriods(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistoryData(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(LedgerServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// FullMethod returns the path of a method, e.g. "/ledger.v1.LedgerService/GetBalance"
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(LedgerServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LedgerServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// LedgerServiceDesc describes ledger.v1.LedgerService for grpc.Server.RegisterService
var LedgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateTransaction", Handler: unaryHandler("CreateTransaction", LedgerServiceServer.CreateTransaction)},
		{MethodName: "EditTransaction", Handler: unaryHandler("EditTransaction", LedgerServiceServer.EditTransaction)},
		{MethodName: "DeleteTransaction", Handler: unaryHandler("DeleteTransaction", LedgerServiceServer.DeleteTransaction)},
		{MethodName: "ListTransactions", Handler: unaryHandler("ListTransactions", LedgerServiceServer.ListTransactions)},
		{MethodName: "GetBalance", Handler: unaryHandler("GetBalance", LedgerServiceServer.GetBalance)},
		{MethodName: "GetCategoryBreakdown", Handler: unaryHandler("GetCategoryBreakdown", LedgerServiceServer.GetCategoryBreakdown)},
		{MethodName: "GetHistoryPeriods", Handler: unaryHandler("GetHistoryPeriods", LedgerServiceServer.GetHistoryPeriods)},
		{MethodName: "GetHistoryData", Handler: unaryHandler("GetHistoryData", LedgerServiceServer.GetHistoryData)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger/v1/ledger.proto",
}

// RegisterLedgerServiceServer registers srv on s
func RegisterLedgerServiceServer(s grpc.ServiceRegistrar, srv LedgerServiceServer) {
	s.RegisterService(&LedgerServiceDesc, srv)
}
