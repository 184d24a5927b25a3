package location

import (
	"context"
	"fmt"

	"github.com/rongwang/sitecrew-server/internal/models"
)

type reportedKey struct{}

type clientIPKey struct{}

// WithReported attaches a device-reported position to ctx. A nil loc leaves
// ctx unchanged.
func WithReported(ctx context.Context, loc *models.Location) context.Context {
	if loc == nil {
		return ctx
	}
	reported := *loc
	return context.WithValue(ctx, reportedKey{}, &reported)
}

// WithClientIP attaches the caller's address for IP based lookups
func WithClientIP(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

// Reported returns the position the device sent with the request.
// Out-of-range coordinates count as no position.
func Reported() Locator {
	return LocatorFunc(func(ctx context.Context) (*models.Location, error) {
		loc, ok := ctx.Value(reportedKey{}).(*models.Location)
		if !ok {
			return nil, ErrUnavailable
		}
		if !valid(loc) {
			return nil, fmt.Errorf("reported position %.6f,%.6f out of range: %w", loc.Lat, loc.Lng, ErrUnavailable)
		}
		return loc, nil
	})
}
