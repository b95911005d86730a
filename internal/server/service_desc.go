package server

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "cardscan.v1.CardScanService"

// CardScanServiceServer is implemented by CardService.
type CardScanServiceServer interface {
	ParseText(context.Context, *ParseTextRequest) (*ScanResponse, error)
	ScanImage(context.Context, *ScanImageRequest) (*ScanResponse, error)
	GetContact(context.Context, *GetContactRequest) (*ScanRecordResponse, error)
	ListContacts(context.Context, *ListContactsRequest) (*ListContactsResponse, error)
	ReviewContact(context.Context, *ReviewContactRequest) (*ScanRecordResponse, error)
	ExportContacts(context.Context, *ExportContactsRequest) (*ExportContactsResponse, error)
}

func RegisterCardScanServiceServer(s grpc.ServiceRegistrar, srv CardScanServiceServer) {
	s.RegisterService(&CardScanServiceDesc, srv)
}

// unary builds a method handler for one request type.
func unary[Req any, Resp any](method string, call func(CardScanServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CardScanServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(CardScanServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var CardScanServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CardScanServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ParseText", CardScanServiceServer.ParseText),
		unary("ScanImage", CardScanServiceServer.ScanImage),
		unary("GetContact", CardScanServiceServer.GetContact),
		unary("ListContacts", CardScanServiceServer.ListContacts),
		unary("ReviewContact", CardScanServiceServer.ReviewContact),
		unary("ExportContacts", CardScanServiceServer.ExportContacts),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cardscan/v1/cardscan.proto",
}

// CardScanServiceClient calls the service over the JSON codec.
type CardScanServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCardScanServiceClient(cc grpc.ClientConnInterface) *CardScanServiceClient {
	return &CardScanServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CardScanServiceClient) ParseText(ctx context.Context, in *ParseTextRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, "ParseText", in, opts)
}

func (c *CardScanServiceClient) ScanImage(ctx context.Context, in *ScanImageRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, "ScanImage", in, opts)
}

func (c *CardScanServiceClient) GetContact(ctx context.Context, in *GetContactRequest, opts ...grpc.CallOption) (*ScanRecordResponse, error) {
	return invoke[ScanRecordResponse](ctx, c.cc, "GetContact", in, opts)
}

func (c *CardScanServiceClient) ListContacts(ctx context.Context, in *ListContactsRequest, opts ...grpc.CallOption) (*ListContactsResponse, error) {
	return invoke[ListContactsResponse](ctx, c.cc, "ListContacts", in, opts)
}

func (c *CardScanServiceClient) ReviewContact(ctx context.Context, in *ReviewContactRequest, opts ...grpc.CallOption) (*ScanRecordResponse, error) {
	return invoke[ScanRecordResponse](ctx, c.cc, "ReviewContact", in, opts)
}

func (c *CardScanServiceClient) ExportContacts(ctx context.Context, in *ExportContactsRequest, opts ...grpc.CallOption) (*ExportContactsResponse, error) {
	return invoke[ExportContactsResponse](ctx, c.cc, "ExportContacts", in, opts)
}
