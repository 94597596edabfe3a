package endpoint

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	smtypes "github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"

	monerrors "github.com/cloudacademy/sagemaker-data-quality-monitoring/internal/errors"
)

type stubRuntime struct {
	body    []byte
	variant string
	errs    []error // consumed one per call; nil means success
	calls   int
	lastIn  *sagemakerruntime.InvokeEndpointInput
}

func (s *stubRuntime) InvokeEndpoint(ctx context.Context, params *sagemakerruntime.InvokeEndpointInput,
	_ ...func(*sagemakerruntime.Options)) (*sagemakerruntime.InvokeEndpointOutput, error) {
	s.calls++
	s.lastIn = params
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &sagemakerruntime.InvokeEndpointOutput{
		Body:                     s.body,
		InvokedProductionVariant: aws.String(s.variant),
	}, nil
}

type stubControl struct {
	out *sagemaker.DescribeEndpointOutput
	err error
}

func (s *stubControl) DescribeEndpoint(ctx context.Context, params *sagemaker.DescribeEndpointInput,
	_ ...func(*sagemaker.Options)) (*sagemaker.DescribeEndpointOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.out, nil
}

func TestClient_Invoke(t *testing.T) {
	rt := &stubRuntime{body: []byte("0.8273\n"), variant: "AllTraffic"}
	client := NewClientWithAPIs(rt, &stubControl{}, Config{EndpointName: "churn-predictor"})

	pred, err := client.Invoke(context.Background(), "1.5,2.5,3.5")
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}

	if pred.Score != 0.8273 {
		t.Errorf("score = %g, want 0.8273", pred.Score)
	}
	if pred.Variant != "AllTraffic" {
		t.Errorf("variant = %q", pred.Variant)
	}
	if pred.InferenceID == "" {
		t.Error("expected a non-empty inference id")
	}

	if got := aws.ToString(rt.lastIn.EndpointName); got != "churn-predictor" {
		t.Errorf("endpoint name = %q", got)
	}
	if got := aws.ToString(rt.lastIn.ContentType); got != "text/csv" {
		t.Errorf("content type = %q", got)
	}
	if got := string(rt.lastIn.Body); got != "1.5,2.5,3.5" {
		t.Errorf("body = %q", got)
	}
}

func TestClient_Invoke_RetriesThrottle(t *testing.T) {
	rt := &stubRuntime{
		body:    []byte("0.5"),
		variant: "AllTraffic",
		errs:    []error{fmt.Errorf("api error ThrottlingException: rate exceeded"), nil},
	}
	client := NewClientWithAPIs(rt, &stubControl{}, Config{EndpointName: "e"})

	if _, err := client.Invoke(context.Background(), "1"); err != nil {
		t.Fatalf("Invoke should succeed after retry: %v", err)
	}
	if rt.calls != 2 {
		t.Errorf("expected 2 calls, got %d", rt.calls)
	}
}

func TestClient_Invoke_BadResponse(t *testing.T) {
	rt := &stubRuntime{body: []byte("<html>error</html>"), variant: "AllTraffic"}
	client := NewClientWithAPIs(rt, &stubControl{}, Config{EndpointName: "e"})

	_, err := client.Invoke(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error for non-numeric body")
	}
	if monerrors.GetCode(err) != monerrors.CodeBadResponse {
		t.Errorf("code = %q, want %q", monerrors.GetCode(err), monerrors.CodeBadResponse)
	}
}

func TestClient_Describe(t *testing.T) {
	now := time.Now()
	ctl := &stubControl{
		out: &sagemaker.DescribeEndpointOutput{
			EndpointName:       aws.String("churn-predictor"),
			EndpointArn:        aws.String("arn:aws:sagemaker:us-east-1:123456789012:endpoint/churn-predictor"),
			EndpointConfigName: aws.String("churn-predictor-config"),
			EndpointStatus:     smtypes.EndpointStatusInService,
			CreationTime:       aws.Time(now),
			ProductionVariants: []smtypes.ProductionVariantSummary{
				{VariantName: aws.String("AllTraffic")},
			},
			DataCaptureConfig: &smtypes.DataCaptureConfigSummary{
				EnableCapture:             aws.Bool(true),
				CaptureStatus:             smtypes.CaptureStatusStarted,
				CurrentSamplingPercentage: aws.Int32(100),
				DestinationS3Uri:          aws.String("s3://monitor-bucket/data-capture"),
			},
		},
	}
	client := NewClientWithAPIs(&stubRuntime{}, ctl, Config{EndpointName: "churn-predictor"})

	info, err := client.Describe(context.Background())
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	if info.Name != "churn-predictor" {
		t.Errorf("name = %q", info.Name)
	}
	if info.Status != "InService" {
		t.Errorf("status = %q", info.Status)
	}
	if len(info.Variants) != 1 || info.Variants[0] != "AllTraffic" {
		t.Errorf("variants = %v", info.Variants)
	}

	if info.Capture == nil {
		t.Fatal("expected capture config")
	}
	if !info.Capture.Enabled {
		t.Error("expected capture enabled")
	}
	if info.Capture.SamplingPercentage != 100 {
		t.Errorf("sampling = %d", info.Capture.SamplingPercentage)
	}
	if info.Capture.Destination.String() != "s3://monitor-bucket/data-capture" {
		t.Errorf("destination = %q", info.Capture.Destination)
	}
}

func TestClient_Describe_Error(t *testing.T) {
	ctl := &stubControl{err: errors.New("endpoint not found")}
	client := NewClientWithAPIs(&stubRuntime{}, ctl, Config{EndpointName: "missing"})

	_, err := client.Describe(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if monerrors.GetCategory(err) != monerrors.ErrCategoryEndpoint {
		t.Errorf("category = %q", monerrors.GetCategory(err))
	}
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    float64
		wantErr bool
	}{
		{name: "bare float", body: "0.75", want: 0.75},
		{name: "newline terminated", body: "0.75\n", want: 0.75},
		{name: "csv first value", body: "0.75,0.25", want: 0.75},
		{name: "integer", body: "1", want: 1},
		{name: "empty", body: "", wantErr: true},
		{name: "non numeric", body: "error", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseScore([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseScore failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseScore(%q) = %g, want %g", tt.body, got, tt.want)
			}
		})
	}
}
