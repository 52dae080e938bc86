package metric

const (
	TagEnv                            = "env"
	TagService                        = "service"
	TagMethod                         = "method"
	TagStatus                         = "status"
	TagStore                          = "store"
	TagModel                          = "model"
	TagExternalService                = "external_service"
	TagGrpcStatusCode                 = "grpc_status_code"
	TagCommunicationProtocol          = "communication_protocol"
	TagValueCommunicationProtocolGrpc = "grpc"
)

type Tag struct {
	Key   string
	Value string
}

func NewTag(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// BuildTag renders tags in the "key:value" form statsd expects
func BuildTag(tags ...Tag) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagAsString(t.Key, t.Value))
	}
	return out
}

func TagAsString(key, value string) string {
	return key + ":" + value
}
