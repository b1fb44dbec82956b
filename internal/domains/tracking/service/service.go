package service

import (
	"context"
	"fmt"
	"otms/config"
	"otms/infras/otel"
	surgeryModel "otms/internal/domains/surgery/model"
	surgeryRepo "otms/internal/domains/surgery/repository"
	"otms/internal/domains/tracking/model"
	"otms/internal/domains/tracking/model/dto"
	"otms/internal/domains/tracking/repository"
	"otms/shared"
	"otms/shared/cache"
	"otms/shared/constant"
	"otms/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetTracking = "tracking:get"
)

type Tracking interface {
	Get(ctx context.Context, surgeryID string) (dto.TrackingResponse, error)
	Upsert(ctx context.Context, req dto.UpsertTrackingRequest) (dto.TrackingResponse, error)
}

type serviceImpl struct {
	repo        repository.Tracking
	surgeryRepo surgeryRepo.Surgery
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(repo repository.Tracking, surgeries surgeryRepo.Surgery, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Tracking {
	return &serviceImpl{
		repo:        repo,
		surgeryRepo: surgeries,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, surgeryID string) (res dto.TrackingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tracking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetTracking, surgeryID)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for surgery tracking")

		return res, nil
	}

	tracking, err := s.repo.GetBySurgeryID(ctx, surgeryID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get surgery tracking")

		return res, fmt.Errorf("failed to get surgery tracking: %w", err)
	}

	if tracking.ID == constant.Empty {
		return res, failure.NotFound("surgery tracking not found") //nolint:wrapcheck
	}

	res.FromModel(tracking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save surgery tracking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Upsert(ctx context.Context, req dto.UpsertTrackingRequest) (res dto.TrackingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".tracking.Upsert")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	surgeryExists, err := s.surgeryRepo.Exist(ctx, shared.FilterByID(req.SurgeryID, surgeryModel.FieldID, surgeryModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if surgery exists")

		return res, fmt.Errorf("failed to check if surgery exists: %w", err)
	}

	if !surgeryExists {
		return res, failure.NotFound("surgery not found") //nolint:wrapcheck
	}

	existing, err := s.repo.GetBySurgeryID(ctx, req.SurgeryID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get surgery tracking")

		return res, fmt.Errorf("failed to get surgery tracking: %w", err)
	}

	if existing.ID == constant.Empty {
		tracking := req.ToModel(user)

		if err = s.repo.Insert(ctx, tracking); err != nil {
			log.Error().Err(err).Msg("failed to create surgery tracking")

			return res, fmt.Errorf("failed to create surgery tracking: %w", err)
		}

		res.FromModel(tracking)
	} else {
		fields := req.ToFields(user)

		if err = s.repo.Update(ctx, fields, shared.FilterByID(req.SurgeryID, model.FieldSurgeryID, model.TableName)); err != nil {
			log.Error().Err(err).Msg("failed to update surgery tracking")

			return res, fmt.Errorf("failed to update surgery tracking: %w", err)
		}

		updated, getErr := s.repo.GetBySurgeryID(ctx, req.SurgeryID)
		if getErr != nil {
			log.Error().Err(getErr).Msg("failed to reload surgery tracking")

			return res, fmt.Errorf("failed to reload surgery tracking: %w", getErr)
		}

		res.FromModel(updated)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetTracking, req.SurgeryID)); err != nil {
			log.Error().Err(err).Msg("failed to delete surgery tracking from cache")
		}
	}()

	return res, nil
}
