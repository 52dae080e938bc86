package inference

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/metadata"

	"github.com/Meesho/BharatMLStack/trainset-builder/internal/config"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/data/repositories/caches"
	triton "github.com/Meesho/BharatMLStack/trainset-builder/internal/inference/client/grpc"
	"github.com/Meesho/BharatMLStack/trainset-builder/internal/system"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/circuitbreaker"
	"github.com/Meesho/BharatMLStack/trainset-builder/pkg/grpcclient"
)

const (
	v1Prefix = "externalserviceinference_"

	// Header keys for authentication
	headerCallerID    = "INFER-CALLER-ID"
	headerCallerToken = "INFER-AUTH-TOKEN"

	datatypeFP32 = "FP32"
	datatypeFP16 = "FP16"

	cbManagerPrefix = "INFERENCE"
)

// ErrCircuitOpen reports that the breaker is rejecting calls to the model
// server.
var ErrCircuitOpen = errors.New("inference circuit breaker open")

type ClientV1 struct {
	modelName      string
	modelVersion   string
	outputName     string
	inputOfferable string
	inputCreatedAt string
	callerId       string
	callerToken    string
	deadlineMs     int64
	conn           *grpcclient.GRPCClient
	grpcClient     triton.GRPCInferenceServiceClient
	breaker        circuitbreaker.ManualCircuitBreaker
	cache          caches.VectorCache
}

// NewClientV1 creates a new instance of the inference client (v1)
func NewClientV1(conf *config.Inference) *ClientV1 {
	validateConfig(conf)

	conn := grpcclient.NewConnFromConfig(&grpcclient.Config{
		Host:      conf.Host,
		Port:      conf.Port,
		DeadLine:  conf.DeadlineMs,
		PlainText: conf.PlainText,
	}, v1Prefix)

	breaker, err := circuitbreaker.GetManager(cbManagerPrefix).GetOrCreateManualCB(conf.ModelName)
	if err != nil {
		log.Panic().Err(err).Msg("Could not build inference circuit breaker")
	}

	var cache caches.VectorCache
	if conf.CacheEnabled {
		cache = caches.NewInMemoryCache("inference", conf.CacheSizeMB, conf.CacheTTLSec)
	}

	return &ClientV1{
		modelName:      conf.ModelName,
		modelVersion:   conf.ModelVersion,
		outputName:     conf.OutputName,
		inputOfferable: conf.InputOfferable,
		inputCreatedAt: conf.InputCreatedAt,
		callerId:       conf.CallerID,
		callerToken:    conf.AuthToken,
		deadlineMs:     int64(conf.DeadlineMs),
		conn:           conn,
		grpcClient:     triton.NewGRPCInferenceServiceClient(conn),
		breaker:        breaker,
		cache:          cache,
	}
}

func validateConfig(conf *config.Inference) {
	if conf == nil {
		log.Panic().Msg("Configuration is nil. Please provide a valid config.")
		return
	}
	if len(conf.Host) == 0 {
		log.Panic().Msg("Configuration error: Host is empty. Please provide a valid host.")
	}
	if len(conf.Port) == 0 {
		log.Panic().Msg("Configuration error: Port is empty. Please provide a valid port.")
	}
	if len(conf.ModelName) == 0 {
		log.Panic().Msg("Configuration error: Model name is empty. Please provide a valid model name.")
	}
	if len(conf.OutputName) == 0 {
		log.Panic().Msg("Configuration error: Output name is empty. Please provide a valid output name.")
	}
}

func (c *ClientV1) ExtraEmbedding(offerable, createdAt float32) ([]float32, error) {
	var cacheKey string
	if c.cache != nil {
		cacheKey = caches.BuildKey(offerable, createdAt)
		if vec, ok := c.cache.Get(cacheKey); ok {
			return vec, nil
		}
	}

	if !c.breaker.IsAllowed() {
		return nil, ErrCircuitOpen
	}

	resp, err := c.modelInfer(c.buildRequest(offerable, createdAt))
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}

	vec, err := c.decodeOutput(resp)
	if err != nil {
		c.breaker.RecordFailure()
		return nil, err
	}
	c.breaker.RecordSuccess()

	if c.cache != nil {
		if cerr := c.cache.Set(cacheKey, vec); cerr != nil {
			log.Warn().Err(cerr).Msg("Could not cache inference result")
		}
	}
	return vec, nil
}

func (c *ClientV1) buildRequest(offerable, createdAt float32) *triton.ModelInferRequest {
	return &triton.ModelInferRequest{
		ModelName:    c.modelName,
		ModelVersion: c.modelVersion,
		Inputs: []*triton.ModelInferRequest_InferInputTensor{
			{
				Name:     c.inputOfferable,
				Datatype: datatypeFP32,
				Shape:    []int64{1, 1},
				Contents: &triton.InferTensorContents{Fp32Contents: []float32{offerable}},
			},
			{
				Name:     c.inputCreatedAt,
				Datatype: datatypeFP32,
				Shape:    []int64{1, 1},
				Contents: &triton.InferTensorContents{Fp32Contents: []float32{createdAt}},
			},
		},
		Outputs: []*triton.ModelInferRequest_InferRequestedOutputTensor{
			{Name: c.outputName},
		},
	}
}

func (c *ClientV1) modelInfer(req *triton.ModelInferRequest) (*triton.ModelInferResponse, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(c.deadlineMs)*time.Millisecond)
	defer cancel()

	md := getMetadata(c.callerId, c.callerToken)
	ctx = metadata.NewOutgoingContext(ctx, md)
	resp, err := c.grpcClient.ModelInfer(ctx, req)
	if err != nil {
		log.Warn().Err(err).
			Str("model_name", c.modelName).
			Str("model_version", c.modelVersion).
			Msg("Failed to get inference from model server")
		return nil, err
	}
	return resp, nil
}

// decodeOutput extracts the requested tensor. Small responses come back in
// typed contents, larger deployments stream raw little-endian bytes, both
// forms are handled.
func (c *ClientV1) decodeOutput(resp *triton.ModelInferResponse) ([]float32, error) {
	for i, out := range resp.GetOutputs() {
		if out.GetName() != c.outputName {
			continue
		}
		if contents := out.GetContents(); contents != nil && len(contents.GetFp32Contents()) > 0 {
			return contents.GetFp32Contents(), nil
		}
		raw := resp.GetRawOutputContents()
		if i >= len(raw) {
			return nil, fmt.Errorf("output %s has no contents", c.outputName)
		}
		switch out.GetDatatype() {
		case datatypeFP32:
			if len(raw[i])%4 != 0 {
				return nil, fmt.Errorf("output %s: raw length %d not a multiple of 4", c.outputName, len(raw[i]))
			}
			return system.ByteOrder.Float32Vector(raw[i]), nil
		case datatypeFP16:
			if len(raw[i])%2 != 0 {
				return nil, fmt.Errorf("output %s: raw length %d not a multiple of 2", c.outputName, len(raw[i]))
			}
			return system.ByteOrder.FP16Vector(raw[i]), nil
		default:
			return nil, fmt.Errorf("output %s: unsupported datatype %s", c.outputName, out.GetDatatype())
		}
	}
	return nil, fmt.Errorf("output %s missing from response", c.outputName)
}

func getMetadata(callerId string, callerToken string) metadata.MD {
	md := metadata.New(nil)
	md.Set(headerCallerID, callerId)
	md.Set(headerCallerToken, callerToken)
	return md
}
