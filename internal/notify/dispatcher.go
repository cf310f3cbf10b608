// Package notify delivers best-effort order notifications to an external
// messaging channel, decoupled from order creation by a bounded in-process
// job queue.
package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/orgalife/storefront/internal/domain/order"
	"github.com/orgalife/storefront/internal/domain/settings"
)

// DispatcherConfig holds non-dependency configuration for the Dispatcher.
type DispatcherConfig struct {
	// QueueSize bounds the notification job queue. A full queue drops new
	// jobs rather than blocking order creation.
	QueueSize int
	// UploadDir is the local directory item image paths resolve against.
	UploadDir string
}

// Dispatcher consumes queued orders and sends a summary message plus
// per-item photos through a Sender. Every external call is best-effort: no
// retries, no propagation back to the order pipeline.
type Dispatcher struct {
	settings  settings.Repository
	sender    Sender
	uploadDir string
	lg        *zap.Logger
	tracer    trace.Tracer
	jobs      chan order.Order
}

// NewDispatcher creates a Dispatcher. Run must be started for queued jobs to
// be delivered.
func NewDispatcher(
	cfg DispatcherConfig,
	st settings.Repository,
	sender Sender,
	lg *zap.Logger,
	tp trace.TracerProvider,
) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Dispatcher{
		settings:  st,
		sender:    sender,
		uploadDir: cfg.UploadDir,
		lg:        lg,
		tracer:    tp.Tracer("storefront/notify"),
		jobs:      make(chan order.Order, cfg.QueueSize),
	}
}

// Enqueue schedules a notification for the order. It never blocks: when the
// queue is full the job is dropped with a log line, keeping order creation
// unaffected.
func (d *Dispatcher) Enqueue(o order.Order) {
	select {
	case d.jobs <- o:
	default:
		d.lg.Warn("notification queue full, dropping job",
			zap.String("order_id", o.ID),
		)
	}
}

// Run consumes queued jobs until ctx is cancelled. A job picked up before
// cancellation runs to completion; its outbound calls are bounded by the
// sender's own timeouts rather than the run context.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case o := <-d.jobs:
			d.Notify(context.WithoutCancel(ctx), o)
		}
	}
}

// Notify sends the summary text and per-item photos for one order. Failures
// are logged and never returned: a failed text send does not stop photo
// sends, and each photo send is independent of the others.
func (d *Dispatcher) Notify(ctx context.Context, o order.Order) {
	ctx, span := d.tracer.Start(ctx, "notify.order")
	defer span.End()

	st, err := d.settings.Get(ctx)
	if err != nil {
		d.lg.Error("load settings for notification", zap.Error(err))
		return
	}
	if st.TelegramBotToken == "" || st.TelegramChatID == "" {
		// Notifications are optional; unconfigured is not an error.
		d.lg.Debug("telegram credentials not configured, skipping notification")
		return
	}

	lg := d.lg.With(zap.String("order_id", o.ID), zap.String("ref", o.ShortRef()))

	if err := d.sender.SendMessage(ctx, st.TelegramBotToken, st.TelegramChatID, FormatSummary(o)); err != nil {
		lg.Error("send order summary", zap.Error(err))
	}

	for _, it := range o.Items {
		if it.Image == "" {
			continue
		}
		if err := d.sendItemPhoto(ctx, st, it); err != nil {
			lg.Error("send item photo",
				zap.String("item", it.Name),
				zap.String("image", it.Image),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) sendItemPhoto(ctx context.Context, st *settings.Settings, it order.Item) error {
	caption := "Item: " + it.Name

	if strings.HasPrefix(it.Image, "http") {
		return d.sender.SendPhotoURL(ctx, st.TelegramBotToken, st.TelegramChatID, caption, it.Image)
	}

	// Local paths are stored as /uploads/<name>; uploads are flat, so the
	// base name is enough and keeps traversal out.
	name := filepath.Base(it.Image)
	f, err := os.Open(filepath.Join(d.uploadDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file skips this image only.
			d.lg.Debug("item image missing on disk", zap.String("image", it.Image))
			return nil
		}
		return err
	}
	defer f.Close()

	return d.sender.SendPhotoFile(ctx, st.TelegramBotToken, st.TelegramChatID, caption, name, f)
}

// FormatSummary renders the order notification text: short reference,
// customer details, one line per item (quantity shown only when above one),
// and the final total.
func FormatSummary(o order.Order) string {
	var b strings.Builder
	b.WriteString("📦 *New Order Received!*\n")
	b.WriteString("--------------------------------\n")
	fmt.Fprintf(&b, "*Order ID:* #%s\n", o.ShortRef())
	fmt.Fprintf(&b, "👤 *Customer:* %s\n", o.CustomerName)
	fmt.Fprintf(&b, "📞 *Phone:* %s\n", o.CustomerPhone)
	fmt.Fprintf(&b, "📍 *Address:* %s\n\n", o.CustomerAddress)

	b.WriteString("🛒 *Items:*\n")
	for _, it := range o.Items {
		if it.Quantity > 1 {
			fmt.Fprintf(&b, "• %s (x%d) - ৳%d\n", it.Name, it.Quantity, it.Price)
		} else {
			fmt.Fprintf(&b, "• %s - ৳%d\n", it.Name, it.Price)
		}
	}

	if o.Discount > 0 {
		fmt.Fprintf(&b, "\n🏷 *Discount (%s):* -৳%d\n", o.DiscountCode, o.Discount)
	}
	fmt.Fprintf(&b, "\n💰 *Total Amount:* ৳%d\n", o.Total)
	b.WriteString("--------------------------------")
	return b.String()
}
