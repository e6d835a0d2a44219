package temporalx

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/api/workflowservice/v1"
	temporalsdkclient "go.temporal.io/sdk/client"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/moviemetric/backend/internal/platform/logger"
)

// dialSettings groups the env-tunable retry knobs for one connect loop so the
// dial path and the namespace-ensure path read them the same way.
type dialSettings struct {
	timeout    time.Duration
	maxWait    time.Duration
	backoff    time.Duration
	backoffMax time.Duration
}

func loadDialSettings(prefix string) dialSettings {
	return dialSettings{
		timeout:    envDuration(prefix+"_TIMEOUT_SECONDS", 5*time.Second, time.Second),
		maxWait:    envDuration(prefix+"_MAX_WAIT_SECONDS", 60*time.Second, time.Second),
		backoff:    envDuration(prefix+"_BACKOFF_MS", 250*time.Millisecond, time.Millisecond),
		backoffMax: envDuration(prefix+"_BACKOFF_MAX_MS", 5*time.Second, time.Millisecond),
	}
}

// NewClient dials Temporal from env config, retrying with capped exponential
// backoff until TEMPORAL_DIAL_MAX_WAIT_SECONDS elapses. An empty
// TEMPORAL_ADDRESS yields (nil, nil): callers fall back to running jobs
// inline.
func NewClient(log *logger.Logger) (temporalsdkclient.Client, error) {
	cfg := LoadConfig()
	if cfg.Address == "" {
		if log != nil {
			log.Warn("TEMPORAL_ADDRESS not set; Temporal disabled")
		}
		return nil, nil
	}

	opts := temporalsdkclient.Options{
		HostPort:  cfg.Address,
		Namespace: cfg.Namespace,
		Logger:    log,
	}
	if err := applyTLS(&opts, cfg); err != nil {
		return nil, err
	}

	settings := loadDialSettings("TEMPORAL_DIAL")
	deadline := time.Now().Add(settings.maxWait)
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), settings.timeout)
		c, err := temporalsdkclient.DialContext(ctx, opts)
		cancel()
		if err == nil {
			if log != nil && attempt > 1 {
				log.Info("Connected to Temporal", "address", cfg.Address, "namespace", cfg.Namespace, "attempts", attempt)
			}
			if EnvTrue("TEMPORAL_AUTO_REGISTER_NAMESPACE", false) {
				if nsErr := EnsureNamespace(context.Background(), c, cfg.Namespace, log); nsErr != nil {
					c.Close()
					return nil, nsErr
				}
			}
			return c, nil
		}

		if settings.maxWait <= 0 || time.Now().After(deadline) {
			return nil, fmt.Errorf("temporal dial failed (address=%s namespace=%s): %w", cfg.Address, cfg.Namespace, err)
		}
		if log != nil {
			log.Warn("Temporal not reachable; retrying", "address", cfg.Address, "attempt", attempt, "error", err)
		}
		time.Sleep(ClampBackoff(settings.backoff, settings.backoffMax, attempt))
	}
}

// EnsureNamespace makes sure the configured namespace exists, registering it
// when it does not. Meant for self-hosted Temporal; cloud namespaces are
// provisioned out of band.
func EnsureNamespace(ctx context.Context, c temporalsdkclient.Client, namespace string, log *logger.Logger) error {
	namespace = strings.TrimSpace(namespace)
	if c == nil || namespace == "" {
		return nil
	}
	cfg := LoadConfig()
	if cfg.Address == "" {
		return nil
	}

	backoff := envDuration("TEMPORAL_NAMESPACE_ENSURE_BACKOFF_MS", 250*time.Millisecond, time.Millisecond)
	backoffMax := envDuration("TEMPORAL_NAMESPACE_ENSURE_BACKOFF_MAX_MS", 5*time.Second, time.Millisecond)
	maxWait := envDuration("TEMPORAL_NAMESPACE_ENSURE_TIMEOUT_SECONDS", 10*time.Second, time.Second)
	if maxWait <= 0 {
		maxWait = 10 * time.Second
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	// Registration has to go through the NamespaceClient: the regular client
	// stamps the namespace header on every call, which fails before the
	// namespace exists.
	nsOpts := temporalsdkclient.Options{HostPort: cfg.Address, Logger: log}
	if err := applyTLS(&nsOpts, cfg); err != nil {
		return err
	}
	nsClient, err := temporalsdkclient.NewNamespaceClient(nsOpts)
	if err != nil {
		return fmt.Errorf("temporal namespace ensure: init namespace client: %w", err)
	}
	defer nsClient.Close()

	deadline := time.Now().Add(maxWait)
	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("temporal namespace ensure: timed out (namespace=%s): %w", namespace, ctx.Err())
		}

		_, err := nsClient.Describe(ctx, namespace)
		if err == nil {
			return nil
		}

		var notFound *serviceerror.NamespaceNotFound
		if errors.As(err, &notFound) {
			regErr := nsClient.Register(ctx, &workflowservice.RegisterNamespaceRequest{
				Namespace:                        namespace,
				Description:                      "moviemetric auto-registered namespace",
				WorkflowExecutionRetentionPeriod: durationpb.New(namespaceRetention()),
			})
			if regErr == nil {
				if log != nil {
					log.Info("Registered Temporal namespace", "namespace", namespace)
				}
				return nil
			}
			var exists *serviceerror.NamespaceAlreadyExists
			if errors.As(regErr, &exists) {
				return nil
			}
			if retryableRPC(regErr) && time.Now().Before(deadline) {
				if log != nil {
					log.Warn("Temporal namespace register retrying", "namespace", namespace, "attempt", attempt, "error", regErr)
				}
				time.Sleep(ClampBackoff(backoff, backoffMax, attempt))
				continue
			}
			return fmt.Errorf("temporal namespace ensure: register namespace: %w", regErr)
		}

		if retryableRPC(err) && time.Now().Before(deadline) {
			if log != nil {
				log.Warn("Temporal namespace describe retrying", "namespace", namespace, "attempt", attempt, "error", err)
			}
			time.Sleep(ClampBackoff(backoff, backoffMax, attempt))
			continue
		}
		return fmt.Errorf("temporal namespace ensure: describe namespace: %w", err)
	}
}

// namespaceRetention reads TEMPORAL_NAMESPACE_RETENTION_DAYS and clamps it to
// [1, 365] days, defaulting to 7.
func namespaceRetention() time.Duration {
	days := 7
	if v := strings.TrimSpace(os.Getenv("TEMPORAL_NAMESPACE_RETENTION_DAYS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	if days < 1 {
		days = 7
	}
	if days > 365 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// applyTLS wires client mTLS into opts when any of the cert env paths are set.
func applyTLS(opts *temporalsdkclient.Options, cfg Config) error {
	if cfg.ClientCertPath == "" && cfg.ClientKeyPath == "" && cfg.ClientCAPath == "" {
		return nil
	}
	if cfg.ClientCertPath == "" || cfg.ClientKeyPath == "" {
		return fmt.Errorf("temporal tls: both TEMPORAL_CLIENT_CERT_PATH and TEMPORAL_CLIENT_KEY_PATH are required when enabling mTLS")
	}
	cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
	if err != nil {
		return fmt.Errorf("temporal tls: load client cert/key: %w", err)
	}
	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if cfg.ClientCAPath != "" {
		pem, err := os.ReadFile(cfg.ClientCAPath)
		if err != nil {
			return fmt.Errorf("temporal tls: read CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return fmt.Errorf("temporal tls: invalid CA pem")
		}
		tlsCfg.RootCAs = pool
	}
	opts.ConnectionOptions.TLS = tlsCfg
	return nil
}

func EnvTrue(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// envDuration reads key as an integer count of unit, falling back to def on
// absence or garbage. Negative values clamp to zero.
func envDuration(key string, def, unit time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < 0 {
		n = 0
	}
	return time.Duration(n) * unit
}

// ClampBackoff doubles base per attempt and caps the result at max.
func ClampBackoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	sleep := base
	for i := 1; i < attempt; i++ {
		sleep *= 2
		if max > 0 && sleep >= max {
			return max
		}
	}
	if max > 0 && sleep > max {
		return max
	}
	return sleep
}

func retryableRPC(err error) bool {
	if err == nil {
		return false
	}
	s, ok := status.FromError(err)
	if !ok {
		return errors.Is(err, context.DeadlineExceeded)
	}
	switch s.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
