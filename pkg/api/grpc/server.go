// Package grpcapi implements the unitconv.v1.Converter gRPC service. Requests
// and responses are google.protobuf.Struct messages so that any gRPC client
// can call the service without generated stubs.
package grpcapi

import (
	"context"
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/anypb"
	"google.golang.org/protobuf/types/known/structpb"

	longrunningpb "cloud.google.com/go/longrunning/autogen/longrunningpb"

	"github.com/lemonberrylabs/unitconv/pkg/conversion"
	"github.com/lemonberrylabs/unitconv/pkg/parser"
	"github.com/lemonberrylabs/unitconv/pkg/store"
	"github.com/lemonberrylabs/unitconv/pkg/types"
	"github.com/lemonberrylabs/unitconv/pkg/units"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "unitconv.v1.Converter"

// ConverterServer is the server API for the Converter service.
type ConverterServer interface {
	Evaluate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Convert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListUnits(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddUnit(context.Context, *structpb.Struct) (*longrunningpb.Operation, error)
	DeleteUnit(context.Context, *structpb.Struct) (*longrunningpb.Operation, error)
}

var converterServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ConverterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: structHandler("Evaluate", func(s ConverterServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
			return s.Evaluate(ctx, in)
		})},
		{MethodName: "Convert", Handler: structHandler("Convert", func(s ConverterServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
			return s.Convert(ctx, in)
		})},
		{MethodName: "ListUnits", Handler: structHandler("ListUnits", func(s ConverterServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
			return s.ListUnits(ctx, in)
		})},
		{MethodName: "AddUnit", Handler: structHandler("AddUnit", func(s ConverterServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
			return s.AddUnit(ctx, in)
		})},
		{MethodName: "DeleteUnit", Handler: structHandler("DeleteUnit", func(s ConverterServer, ctx context.Context, in *structpb.Struct) (proto.Message, error) {
			return s.DeleteUnit(ctx, in)
		})},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "unitconv/v1/converter.proto",
}

// structHandler adapts a method taking a Struct request to a grpc.MethodHandler.
func structHandler(method string, call func(ConverterServer, context.Context, *structpb.Struct) (proto.Message, error)) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ConverterServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: "/" + ServiceName + "/" + method,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ConverterServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Server implements the Converter service and a minimal Operations service.
type Server struct {
	longrunningpb.UnimplementedOperationsServer

	store *store.Store
	grpc  *grpc.Server
}

// New creates a new gRPC server wrapping the given store.
func New(s *store.Store) *Server {
	srv := &Server{store: s}

	gs := grpc.NewServer()
	gs.RegisterService(&converterServiceDesc, srv)
	longrunningpb.RegisterOperationsServer(gs, srv)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// --- Converter Service ---

// Evaluate evaluates {"expression": "..."} and returns the labelled result.
func (s *Server) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	expression := stringField(req, "expression")
	if expression == "" {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}

	cv := conversion.New(s.store.Snapshot())
	r, err := cv.Evaluate(expression)
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(map[string]interface{}{
		"result":  quantityToMap(r.Quantity),
		"measure": r.Measure,
	})
}

// Convert expresses {"value", "unit", "prefix"} in every other unit of the
// same measure.
func (s *Server) Convert(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	prefix := stringField(req, "prefix")
	if prefix != "" && !units.IsPrefix(prefix) {
		return nil, status.Errorf(codes.InvalidArgument, "unknown prefix %q", prefix)
	}

	cv := conversion.New(s.store.Snapshot())
	cv.SetInputUnit(stringField(req, "unit"))
	cv.SetInputPrefix(prefix)
	cv.SetInputValue(req.GetFields()["value"].GetNumberValue())

	if err := cv.Input().Finite(); err != nil {
		return nil, toStatus(err)
	}
	results := cv.Results()
	items := make([]interface{}, len(results))
	for i, r := range results {
		if err := r.Finite(); err != nil {
			return nil, toStatus(err)
		}
		items[i] = quantityToMap(r)
	}
	return newStruct(map[string]interface{}{
		"input":   quantityToMap(cv.Input()),
		"results": items,
	})
}

// ListUnits returns the units matching {"filter": "..."}.
func (s *Server) ListUnits(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	us := s.store.ListUnits(stringField(req, "filter"))
	items := make([]interface{}, len(us))
	for i, u := range us {
		items[i] = unitToMap(u)
	}
	return newStruct(map[string]interface{}{
		"units": items,
	})
}

// AddUnit registers a unit and returns a completed operation carrying it.
func (s *Server) AddUnit(ctx context.Context, req *structpb.Struct) (*longrunningpb.Operation, error) {
	u, err := specFromStruct(req).Unit()
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.store.AddUnit(ctx, u); err != nil {
		return nil, toStatus(err)
	}

	msg, err := newStruct(unitToMap(u))
	if err != nil {
		return nil, err
	}
	return doneOperation("add-"+u.Symbol, msg)
}

// DeleteUnit removes the unit named by {"symbol": "..."}.
func (s *Server) DeleteUnit(ctx context.Context, req *structpb.Struct) (*longrunningpb.Operation, error) {
	symbol := stringField(req, "symbol")
	if err := s.store.DeleteUnit(ctx, symbol); err != nil {
		return nil, toStatus(err)
	}
	return &longrunningpb.Operation{
		Name: "operations/delete-" + symbol,
		Done: true,
	}, nil
}

// --- Operations Service ---

// GetOperation reports every operation as unknown: catalog mutations
// complete before their RPC returns.
func (s *Server) GetOperation(ctx context.Context, req *longrunningpb.GetOperationRequest) (*longrunningpb.Operation, error) {
	return nil, status.Errorf(codes.NotFound, "operation %q not found (all operations complete immediately)", req.GetName())
}

// --- Internal helpers ---

// doneOperation wraps a proto message in an already-completed LRO Operation.
func doneOperation(name string, msg proto.Message) (*longrunningpb.Operation, error) {
	any, err := anypb.New(msg)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to marshal operation result: %v", err)
	}
	return &longrunningpb.Operation{
		Name: "operations/" + name,
		Done: true,
		Result: &longrunningpb.Operation_Response{
			Response: any,
		},
	}, nil
}

func toStatus(err error) error {
	apiErr := types.Classify(err)
	code := codes.Internal
	switch apiErr.Status {
	case types.StatusInvalidArgument:
		code = codes.InvalidArgument
	case types.StatusNotFound:
		code = codes.NotFound
	case types.StatusAlreadyExists:
		code = codes.AlreadyExists
	}
	return status.Error(code, apiErr.Message)
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to build response: %v", err)
	}
	return st, nil
}

func stringField(st *structpb.Struct, key string) string {
	return st.GetFields()[key].GetStringValue()
}

func quantityToMap(q units.Quantity) map[string]interface{} {
	return map[string]interface{}{
		"value":   q.Value,
		"prefix":  q.Prefix,
		"symbol":  q.Unit.DisplaySymbol(),
		"name":    q.Unit.Name,
		"display": q.String(),
	}
}

func unitToMap(u units.Unit) map[string]interface{} {
	return specToMap(parser.SpecFor(u))
}

func specToMap(spec parser.UnitSpec) map[string]interface{} {
	dims := make(map[string]interface{}, len(spec.Dimensions))
	for k, v := range spec.Dimensions {
		dims[k] = v
	}
	return map[string]interface{}{
		"symbol":     spec.Symbol,
		"name":       spec.Name,
		"measure":    spec.Measure,
		"dimensions": dims,
		"multiplier": spec.Multiplier,
		"offset":     spec.Offset,
	}
}

// specFromStruct reads a unit spec. A missing multiplier defaults to 1, as in
// catalog documents.
func specFromStruct(st *structpb.Struct) parser.UnitSpec {
	f := st.GetFields()
	spec := parser.UnitSpec{
		Symbol:     f["symbol"].GetStringValue(),
		Name:       f["name"].GetStringValue(),
		Measure:    f["measure"].GetStringValue(),
		Multiplier: 1,
		Offset:     f["offset"].GetNumberValue(),
	}
	if v, ok := f["multiplier"]; ok {
		spec.Multiplier = v.GetNumberValue()
	}
	if dims := f["dimensions"].GetStructValue(); dims != nil {
		spec.Dimensions = make(map[string]int, len(dims.GetFields()))
		for k, v := range dims.GetFields() {
			spec.Dimensions[k] = int(v.GetNumberValue())
		}
	}
	return spec
}
