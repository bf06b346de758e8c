package grpc

// proto.go defines the phishsense.v1.DetectionService descriptor, server
// interface and client by hand. Messages are plain structs marshalled with
// the JSON codec registered in codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	serviceName = "phishsense.v1.DetectionService"

	detectMethod         = "/" + serviceName + "/Detect"
	getDetectionMethod   = "/" + serviceName + "/GetDetection"
	listDetectionsMethod = "/" + serviceName + "/ListDetections"
)

// DetectionServiceServer is the server API for DetectionService.
type DetectionServiceServer interface {
	Detect(context.Context, *DetectRequest) (*DetectResponse, error)
	GetDetection(context.Context, *GetDetectionRequest) (*GetDetectionResponse, error)
	ListDetections(context.Context, *ListDetectionsRequest) (*ListDetectionsResponse, error)
	mustEmbedUnimplementedDetectionServiceServer()
}

// UnimplementedDetectionServiceServer provides forward-compatible default implementations.
type UnimplementedDetectionServiceServer struct{}

func (UnimplementedDetectionServiceServer) Detect(context.Context, *DetectRequest) (*DetectResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Detect not implemented")
}
func (UnimplementedDetectionServiceServer) GetDetection(context.Context, *GetDetectionRequest) (*GetDetectionResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetDetection not implemented")
}
func (UnimplementedDetectionServiceServer) ListDetections(context.Context, *ListDetectionsRequest) (*ListDetectionsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListDetections not implemented")
}
func (UnimplementedDetectionServiceServer) mustEmbedUnimplementedDetectionServiceServer() {}

// RegisterDetectionServiceServer registers the DetectionServiceServer with the gRPC server.
func RegisterDetectionServiceServer(s grpclib.ServiceRegistrar, srv DetectionServiceServer) {
	s.RegisterService(&detectionServiceDesc, srv)
}

var detectionServiceDesc = grpclib.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*DetectionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Detect", Handler: detectHandler},
		{MethodName: "GetDetection", Handler: getDetectionHandler},
		{MethodName: "ListDetections", Handler: listDetectionsHandler},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "phishsense/v1/detection.proto",
}

func detectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(DetectRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectionServiceServer).Detect(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: detectMethod}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DetectionServiceServer).Detect(ctx, req.(*DetectRequest))
	})
}

func getDetectionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(GetDetectionRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectionServiceServer).GetDetection(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: getDetectionMethod}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DetectionServiceServer).GetDetection(ctx, req.(*GetDetectionRequest))
	})
}

func listDetectionsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	req := new(ListDetectionsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectionServiceServer).ListDetections(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: listDetectionsMethod}
	return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
		return srv.(DetectionServiceServer).ListDetections(ctx, req.(*ListDetectionsRequest))
	})
}

// DetectionServiceClient is the client API for DetectionService.
type DetectionServiceClient interface {
	Detect(ctx context.Context, in *DetectRequest, opts ...grpclib.CallOption) (*DetectResponse, error)
	GetDetection(ctx context.Context, in *GetDetectionRequest, opts ...grpclib.CallOption) (*GetDetectionResponse, error)
	ListDetections(ctx context.Context, in *ListDetectionsRequest, opts ...grpclib.CallOption) (*ListDetectionsResponse, error)
}

type detectionServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewDetectionServiceClient creates a client that sends messages with the JSON codec.
func NewDetectionServiceClient(cc grpclib.ClientConnInterface) DetectionServiceClient {
	return &detectionServiceClient{cc: cc}
}

func (c *detectionServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpclib.CallOption) error {
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *detectionServiceClient) Detect(ctx context.Context, in *DetectRequest, opts ...grpclib.CallOption) (*DetectResponse, error) {
	out := new(DetectResponse)
	if err := c.invoke(ctx, detectMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *detectionServiceClient) GetDetection(ctx context.Context, in *GetDetectionRequest, opts ...grpclib.CallOption) (*GetDetectionResponse, error) {
	out := new(GetDetectionResponse)
	if err := c.invoke(ctx, getDetectionMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *detectionServiceClient) ListDetections(ctx context.Context, in *ListDetectionsRequest, opts ...grpclib.CallOption) (*ListDetectionsResponse, error) {
	out := new(ListDetectionsResponse)
	if err := c.invoke(ctx, listDetectionsMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
