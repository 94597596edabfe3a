// Package endpoint wraps the SageMaker runtime and control-plane clients
// for invoking and describing a hosted model endpoint.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	runtimetypes "github.com/aws/aws-sdk-go-v2/service/sagemakerruntime/types"
	"github.com/google/uuid"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
	"github.com/cloudacademy/sagemaker-data-quality-monitoring/pkg/types"
)

// InvokeAPI is the subset of the SageMaker runtime client used here.
type InvokeAPI interface {
	InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput,
		optFns ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error)
}

// DescribeAPI is the subset of the SageMaker control-plane client used here.
type DescribeAPI interface {
	DescribeEndpoint(ctx context.Context, params *sagemaker.DescribeEndpointInput,
		optFns ...func(*sagemaker.Options)) (*sagemaker.DescribeEndpointOutput, error)
}

// Prediction is the outcome of one endpoint invocation.
type Prediction struct {
	// Score is the scalar model output.
	Score float64

	// Variant is the production variant that served the request.
	Variant string

	// InferenceID correlates the request with its capture record.
	InferenceID string

	// Latency is the observed round-trip time.
	Latency time.Duration
}

// CaptureInfo summarizes an endpoint's data-capture configuration.
type CaptureInfo struct {
	Enabled            bool
	Status             string
	SamplingPercentage int32
	Destination        types.S3URI
	KMSKeyID           string
}

// Info summarizes a deployed endpoint.
type Info struct {
	Name       string
	ARN        string
	ConfigName string
	Status     string
	Variants   []string
	CreatedAt  time.Time
	Capture    *CaptureInfo
}

// Invoker sends one payload row to the endpoint.
type Invoker interface {
	Invoke(ctx context.Context, payload string) (Prediction, error)
}

// Describer reports endpoint configuration.
type Describer interface {
	Describe(ctx context.Context) (*Info, error)
}

// Client invokes and describes a single SageMaker endpoint.
type Client struct {
	runtime      InvokeAPI
	control      DescribeAPI
	endpointName string
	contentType  string
	maxRetries   int
}

// Config holds client settings.
type Config struct {
	// Region is the AWS region.
	Region string

	// EndpointName is the SageMaker endpoint to target.
	EndpointName string

	// ContentType is the request content type. Default: text/csv
	ContentType string
}

// NewClient creates a client using the default credential chain.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewClientWithAPIs(
		sagemakerruntime.NewFromConfig(awsCfg),
		sagemaker.NewFromConfig(awsCfg),
		cfg,
	), nil
}

// NewClientWithAPIs creates a client with pre-configured API clients.
func NewClientWithAPIs(runtime InvokeAPI, control DescribeAPI, cfg Config) *Client {
	if cfg.ContentType == "" {
		cfg.ContentType = "text/csv"
	}
	return &Client{
		runtime:      runtime,
		control:      control,
		endpointName: cfg.EndpointName,
		contentType:  cfg.ContentType,
		maxRetries:   3,
	}
}

// EndpointName returns the target endpoint name.
func (c *Client) EndpointName() string {
	return c.endpointName
}

// Invoke sends one CSV payload row and returns the parsed scalar score.
// Throttling is retried with exponential backoff; validation faults are not.
func (c *Client) Invoke(ctx context.Context, payload string) (Prediction, error) {
	inferenceID := uuid.NewString()

	var out *sagemakerruntime.InvokeEndpointOutput
	start := time.Now()
	err := c.retryWithBackoff(ctx, func() error {
		var invokeErr error
		out, invokeErr = c.runtime.InvokeEndpoint(ctx, &sagemakerruntime.InvokeEndpointInput{
			EndpointName: aws.String(c.endpointName),
			ContentType:  aws.String(c.contentType),
			Accept:       aws.String("text/csv"),
			Body:         []byte(payload),
			InferenceId:  aws.String(inferenceID),
		})
		return invokeErr
	})
	latency := time.Since(start)

	if err != nil {
		var validation *runtimetypes.ValidationError
		if errors.As(err, &validation) {
			return Prediction{}, monerrors.NewEndpointError(monerrors.CodeEndpointNotFound,
				fmt.Sprintf("endpoint %s rejected the request", c.endpointName), err)
		}
		if isThrottle(err) {
			return Prediction{}, monerrors.NewEndpointError(monerrors.CodeThrottled,
				fmt.Sprintf("endpoint %s throttled the request", c.endpointName), err)
		}
		return Prediction{}, monerrors.NewEndpointError(monerrors.CodeInvokeFailed,
			fmt.Sprintf("failed to invoke endpoint %s", c.endpointName), err)
	}

	score, err := ParseScore(out.Body)
	if err != nil {
		return Prediction{}, monerrors.NewEndpointError(monerrors.CodeBadResponse,
			fmt.Sprintf("endpoint %s returned an unparseable body", c.endpointName), err)
	}

	return Prediction{
		Score:       score,
		Variant:     aws.ToString(out.InvokedProductionVariant),
		InferenceID: inferenceID,
		Latency:     latency,
	}, nil
}

// Describe fetches the endpoint configuration including data capture.
func (c *Client) Describe(ctx context.Context) (*Info, error) {
	out, err := c.control.DescribeEndpoint(ctx, &sagemaker.DescribeEndpointInput{
		EndpointName: aws.String(c.endpointName),
	})
	if err != nil {
		return nil, monerrors.NewEndpointError(monerrors.CodeEndpointNotFound,
			fmt.Sprintf("failed to describe endpoint %s", c.endpointName), err)
	}

	info := &Info{
		Name:       aws.ToString(out.EndpointName),
		ARN:        aws.ToString(out.EndpointArn),
		ConfigName: aws.ToString(out.EndpointConfigName),
		Status:     string(out.EndpointStatus),
		CreatedAt:  aws.ToTime(out.CreationTime),
	}

	for _, v := range out.ProductionVariants {
		info.Variants = append(info.Variants, aws.ToString(v.VariantName))
	}

	if dc := out.DataCaptureConfig; dc != nil {
		capture := &CaptureInfo{
			Enabled:            aws.ToBool(dc.EnableCapture),
			Status:             string(dc.CaptureStatus),
			SamplingPercentage: aws.ToInt32(dc.CurrentSamplingPercentage),
			KMSKeyID:           aws.ToString(dc.KmsKeyId),
		}
		if dest := aws.ToString(dc.DestinationS3Uri); dest != "" {
			uri, err := types.ParseS3URI(dest)
			if err != nil {
				return nil, monerrors.NewCaptureError(monerrors.CodeMalformedRecord,
					"capture destination is not a valid S3 URI", err)
			}
			capture.Destination = uri
		}
		info.Capture = capture
	}

	return info, nil
}

// ParseScore parses a scalar score out of an endpoint response body.
// Bodies are text: a bare float, optionally newline-terminated; multi-value
// CSV responses yield the first value.
func ParseScore(body []byte) (float64, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return 0, fmt.Errorf("empty response body")
	}
	first, _, _ := strings.Cut(text, ",")
	score, err := strconv.ParseFloat(strings.TrimSpace(first), 64)
	if err != nil {
		return 0, fmt.Errorf("response %q is not numeric: %w", text, err)
	}
	return score, nil
}

// retryWithBackoff executes the operation with exponential backoff retry.
// Only transient faults (throttles, service unavailable) are retried.
func (c *Client) retryWithBackoff(ctx context.Context, operation func() error) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = operation()
		if lastErr == nil {
			return nil
		}

		if !isTransient(lastErr) {
			return lastErr
		}

		if attempt < c.maxRetries {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * 100 * time.Millisecond
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	return lastErr
}

func isTransient(err error) bool {
	var unavailable *runtimetypes.ServiceUnavailable
	if errors.As(err, &unavailable) {
		return true
	}
	var internal *runtimetypes.InternalFailure
	if errors.As(err, &internal) {
		return true
	}
	return isThrottle(err)
}

func isThrottle(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "ThrottlingException") || strings.Contains(msg, "429")
}
