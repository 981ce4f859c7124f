package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	longrunningpb "cloud.google.com/go/longrunning/autogen/longrunningpb"

	"github.com/lemonberrylabs/unitconv/pkg/parser"
)

// Client calls the Converter service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a client on cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) invoke(ctx context.Context, method string, in map[string]interface{}, out interface{}) error {
	req, err := structpb.NewStruct(in)
	if err != nil {
		return err
	}
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, out)
}

// Evaluate evaluates an expression on the server.
func (c *Client) Evaluate(ctx context.Context, expression string) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "Evaluate", map[string]interface{}{"expression": expression}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Convert converts value, in the given unit and prefix, to all units of the
// same measure.
func (c *Client) Convert(ctx context.Context, value float64, unit, prefix string) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	in := map[string]interface{}{"value": value, "unit": unit, "prefix": prefix}
	if err := c.invoke(ctx, "Convert", in, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUnits lists the units matching filter.
func (c *Client) ListUnits(ctx context.Context, filter string) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.invoke(ctx, "ListUnits", map[string]interface{}{"filter": filter}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddUnit registers a unit.
func (c *Client) AddUnit(ctx context.Context, spec parser.UnitSpec) (*longrunningpb.Operation, error) {
	out := new(longrunningpb.Operation)
	if err := c.invoke(ctx, "AddUnit", specToMap(spec), out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteUnit removes a unit.
func (c *Client) DeleteUnit(ctx context.Context, symbol string) (*longrunningpb.Operation, error) {
	out := new(longrunningpb.Operation)
	if err := c.invoke(ctx, "DeleteUnit", map[string]interface{}{"symbol": symbol}, out); err != nil {
		return nil, err
	}
	return out, nil
}
