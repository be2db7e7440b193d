package v1

import "github.com/lukashondrich/open-workinghours-sub004/internal/models"

// DTOToLocationModel преобразует DTO регистрации в доменную модель
func DTOToLocationModel(dto RegisterLocationRequest) *models.WorkLocation {
	return &models.WorkLocation{
		Name:         dto.Name,
		Latitude:     dto.Latitude,
		Longitude:    dto.Longitude,
		RadiusMeters: dto.RadiusMeters,
	}
}

// ModelToLocationResponse преобразует доменную модель в DTO для ответа
func ModelToLocationResponse(model *models.WorkLocation) *LocationResponse {
	return &LocationResponse{
		ID:           model.ID,
		Name:         model.Name,
		Latitude:     model.Latitude,
		Longitude:    model.Longitude,
		RadiusMeters: model.RadiusMeters,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// ModelsToLocationResponses преобразует слайс моделей в слайс DTO
func ModelsToLocationResponses(models []*models.WorkLocation) []*LocationResponse {
	responses := make([]*LocationResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToLocationResponse(model)
	}
	return responses
}

// DTOToEventModel преобразует DTO сигнала в доменную модель
func DTOToEventModel(dto GeofenceEventRequest) *models.GeofenceEvent {
	return &models.GeofenceEvent{
		LocationID:     dto.LocationID,
		EventType:      dto.EventType,
		Timestamp:      dto.Timestamp,
		Latitude:       dto.Latitude,
		Longitude:      dto.Longitude,
		Accuracy:       dto.Accuracy,
		AccuracySource: models.AccuracySourceCallback,
	}
}

// ModelToEventResponse преобразует доменную модель в DTO для ответа
func ModelToEventResponse(model *models.GeofenceEvent) *GeofenceEventResponse {
	return &GeofenceEventResponse{
		ID:           model.ID,
		LocationID:   model.LocationID,
		EventType:    model.EventType,
		Timestamp:    model.Timestamp,
		Accuracy:     model.Accuracy,
		Ignored:      model.Ignored,
		IgnoreReason: model.IgnoreReason,
	}
}

// ModelToSessionResponse преобразует доменную модель в DTO для ответа
func ModelToSessionResponse(model *models.TrackingSession) *SessionResponse {
	return &SessionResponse{
		ID:              model.ID,
		LocationID:      model.LocationID,
		ClockIn:         model.ClockIn,
		ClockOut:        model.ClockOut,
		DurationMinutes: model.DurationMinutes,
		TrackingMethod:  model.TrackingMethod,
		State:           model.State,
		PendingExitAt:   model.PendingExitAt,
		IsShort:         model.IsShort,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// ModelsToSessionResponses преобразует слайс моделей в слайс DTO
func ModelsToSessionResponses(models []*models.TrackingSession) []*SessionResponse {
	responses := make([]*SessionResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToSessionResponse(model)
	}
	return responses
}
