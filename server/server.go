package server

import (
	"github.com/boltdb/bolt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pratyushraj/noticebazaar/config"
	"github.com/pratyushraj/noticebazaar/internal/audit"
	"github.com/pratyushraj/noticebazaar/internal/otp"
	"github.com/pratyushraj/noticebazaar/internal/store"
	"github.com/pratyushraj/noticebazaar/internal/tokens"
	"github.com/pratyushraj/noticebazaar/misc"
	"github.com/pratyushraj/noticebazaar/platforms/pdf"
	"github.com/pratyushraj/noticebazaar/platforms/storage"
)

type Server struct {
	Cfg *config.Config

	r  *gin.Engine
	db *bolt.DB

	Deals  *store.Store
	Tokens *tokens.Service
	Otp    *otp.Verifier
	Audit  *audit.Log

	Pdf     pdf.Renderer
	Storage storage.Uploader
}

func New(cfg *config.Config, r *gin.Engine) (*Server, error) {
	db := misc.OpenDB(cfg.DBPath, cfg.DBName)
	if err := misc.EnsureBuckets(db, cfg.Bucket.All); err != nil {
		return nil, err
	}

	s := &Server{
		Cfg:    cfg,
		r:      r,
		db:     db,
		Deals:  store.New(db, cfg.Bucket.Deal),
		Tokens: tokens.NewService(cfg.Bucket.Token),
		Otp:    otp.NewVerifier(cfg.Bucket.Otp),
		Audit:  audit.NewLog(cfg.Bucket.Audit),
	}

	if cfg.Sandbox {
		s.Pdf = pdf.Static{}
		s.Storage = storage.Local{Dir: cfg.Storage.LocalDir, BaseURL: cfg.DashURL + "/files"}
	} else {
		s.Pdf = pdf.NewClient(cfg.PDF.Endpoint, cfg.PDF.Key)
		s.Storage = storage.NewClient(cfg.Storage.Endpoint, cfg.Storage.Key, cfg.Storage.Bucket)
	}

	s.initRoutes(r)
	return s, nil
}

func (s *Server) initRoutes(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	// Token gated, no login. Possession of the link is the credential.
	api.GET("/negotiation/:token", getDealByToken(s))
	api.POST("/negotiation/:token/accept", confirmDeal(s))
	api.POST("/negotiation/:token/decline", declineDeal(s))
	api.POST("/negotiation/:token/counter", counterDeal(s))

	api.POST("/sign/:token/sendOtp", sendOtp(s))
	api.POST("/sign/:token/verifyOtp", verifyOtp(s))
	api.POST("/sign/:token", signDeal(s))

	api.GET("/contract/:token", getContractByToken(s))

	// Session gated (api key) creator/admin surface
	authed := api.Group("", s.apiKeyAuth())
	authed.POST("/deal", createDeal(s))
	authed.GET("/deals", getDeals(s))
	authed.GET("/deal/:dealId", getDealById(s))
	authed.DELETE("/deal/:dealId", deleteDeal(s))
	authed.GET("/deal/:dealId/signature/:role", getSignature(s))
	authed.GET("/deal/:dealId/audit", getAuditTrail(s))
	authed.POST("/deal/:dealId/delivery", submitDeliveryDetails(s))
	authed.POST("/deal/:dealId/remind", sendReminder(s))
	authed.POST("/deal/:dealId/share", shareDeal(s))
	authed.POST("/deal/:dealId/uploadSigned", uploadSignedContract(s))
	authed.POST("/deal/:dealId/regenerateContract", regenerateContract(s))
}

func (s *Server) Run() error {
	return s.r.Run(s.Cfg.Host + ":" + s.Cfg.Port)
}

func (s *Server) Close() error {
	return s.db.Close()
}
