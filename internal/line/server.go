// Package line connects the dialogue router to the LINE Messaging API: it
// serves the webhook, verifies signatures, turns webhook events into
// dialogue events and sends the rendered replies back.
package line

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nhle/mood-assistant/internal/dialogue"
	"github.com/nhle/mood-assistant/internal/httpclient"
)

const (
	healthText  = "LINE Bot 正在運行！"
	webhookText = "Webhook 正常運行"

	signatureHeader = "X-Line-Signature"

	// maxConcurrentUsers bounds how many users of one delivery are
	// handled in parallel.
	maxConcurrentUsers = 8
)

// Handler produces the reply for one event.
type Handler interface {
	Handle(ctx context.Context, ev dialogue.Event) []dialogue.Block
}

// Replier delivers rendered messages.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []Message) error
}

// Server is the webhook HTTP server.
type Server struct {
	router  *gin.Engine
	secret  string
	handler Handler
	replier Replier
	log     *zap.Logger
}

// NewServer creates a webhook server that authenticates deliveries with
// the channel secret.
func NewServer(secret string, h Handler, r Replier, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	s := &Server{
		router:  router,
		secret:  secret,
		handler: h,
		replier: r,
		log:     log,
	}

	router.GET("/", s.handleHealth)
	router.GET("/webhook", s.handleWebhookProbe)
	router.POST("/webhook", s.handleWebhook)

	return s
}

// ServeHTTP makes the server usable as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("webhook server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, healthText)
}

func (s *Server) handleWebhookProbe(c *gin.Context) {
	c.String(http.StatusOK, webhookText)
}

func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "unreadable body")
		return
	}

	if !VerifySignature(s.secret, body, c.GetHeader(signatureHeader)) {
		s.log.Warn("webhook signature mismatch")
		c.String(http.StatusBadRequest, "invalid signature")
		return
	}

	events, err := ParseEvents(body)
	if err != nil {
		s.log.Warn("webhook payload rejected", zap.Error(err))
		c.String(http.StatusBadRequest, "invalid payload")
		return
	}

	if err := s.dispatch(c.Request.Context(), events); err != nil {
		s.log.Error("webhook dispatch failed", zap.Error(err))
		c.String(http.StatusInternalServerError, "error")
		return
	}
	c.String(http.StatusOK, "OK")
}

// dispatch handles each user's events in delivery order while different
// users proceed in parallel.
func (s *Server) dispatch(ctx context.Context, events []Inbound) error {
	var order []string
	byUser := make(map[string][]Inbound)
	for _, ev := range events {
		uid := ev.Event.User()
		if _, seen := byUser[uid]; !seen {
			order = append(order, uid)
		}
		byUser[uid] = append(byUser[uid], ev)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUsers)
	for _, uid := range order {
		batch := byUser[uid]
		g.Go(func() error {
			for _, ev := range batch {
				if err := gctx.Err(); err != nil {
					return err
				}
				s.respond(gctx, ev)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Server) respond(ctx context.Context, ev Inbound) {
	messages := Render(s.handler.Handle(ctx, ev.Event))
	if len(messages) == 0 || ev.ReplyToken == "" {
		return
	}
	if err := s.replier.Reply(ctx, ev.ReplyToken, messages); err != nil {
		if httpclient.IsUnauthorized(err) {
			s.log.Error("reply rejected, check the channel access token", zap.Error(err))
			return
		}
		s.log.Error("reply failed",
			zap.String("user_id", ev.Event.User()),
			zap.Int("messages", len(messages)),
			zap.Error(err),
		)
	}
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
