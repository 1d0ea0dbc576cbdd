package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/domain/leads"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/observability/metrics"
	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
)

// DownloadResult carries the bundle served for one valid token.
type DownloadResult struct {
	FileName string
	Data     []byte
	Lead     *leads.Lead
}

// DownloadService exchanges a token for the campaign bundle and records the download.
type DownloadService struct {
	repo      leads.Repository
	codec     *security.DownloadTokenCodec
	assembler Assembler
	logger    *logging.ChanneledLogger
}

// NewDownloadService creates a new download service.
func NewDownloadService(repo leads.Repository, codec *security.DownloadTokenCodec, assembler Assembler, logger *logging.ChanneledLogger) *DownloadService {
	return &DownloadService{
		repo:      repo,
		codec:     codec,
		assembler: assembler,
		logger:    logger,
	}
}

// Handle validates the token, counts the download and assembles the files.
// An invalid token never touches the store.
func (s *DownloadService) Handle(ctx context.Context, token string) (*DownloadResult, error) {
	start := time.Now()

	claims, err := s.codec.Validate(token)
	if err != nil {
		metrics.Downloads.WithLabelValues(metrics.OutcomeTokenInvalid).Inc()
		s.logger.Download().Info("Rejected download token", "token", logging.MaskToken(token), "error", err.Error())
		return nil, err
	}

	lead, err := s.repo.FindByID(ctx, claims.LeadID)
	if err != nil {
		metrics.Downloads.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("lookup lead: %w", err)
	}
	if lead == nil {
		metrics.Downloads.WithLabelValues(metrics.OutcomeNotFound).Inc()
		s.logger.Download().Warn("Download token references missing lead", "leadId", claims.LeadID)
		return nil, fmt.Errorf("download for %s: %w", claims.LeadID, leads.ErrLeadNotFound)
	}

	updated, err := s.repo.RecordDownload(ctx, lead.ID)
	if err != nil {
		if errors.Is(err, leads.ErrLeadNotFound) {
			metrics.Downloads.WithLabelValues(metrics.OutcomeNotFound).Inc()
		} else {
			metrics.Downloads.WithLabelValues(metrics.OutcomeFailed).Inc()
		}
		return nil, fmt.Errorf("record download: %w", err)
	}

	data, err := s.assembler.Assemble(updated)
	if err != nil {
		metrics.Downloads.WithLabelValues(metrics.OutcomeFailed).Inc()
		s.logger.Download().Error("Failed to assemble campaign files", "error", err.Error(), "leadId", lead.ID)
		return nil, fmt.Errorf("assemble campaign files: %w", err)
	}

	metrics.Downloads.WithLabelValues(metrics.OutcomeServed).Inc()
	s.logger.Download().Info("Campaign files served",
		"leadId", updated.ID,
		"campaignId", claims.CampaignID,
		"downloadCount", updated.DownloadCount,
		"bytes", len(data),
		"duration", time.Since(start))

	return &DownloadResult{
		FileName: s.assembler.FileName(updated),
		Data:     data,
		Lead:     updated,
	}, nil
}
