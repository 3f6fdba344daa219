package handler

import "github.com/willslawrence/sfla-tracker/internal/core/ports"

func toMarkerResponse(m ports.MarkerView) markerResponse {
	return markerResponse{
		ID:          m.ID,
		Name:        m.Name,
		Lat:         m.Lat,
		Lng:         m.Lng,
		Status:      m.Status,
		Notes:       m.Notes,
		CheckCount:  m.CheckCount,
		LastChecked: m.LastChecked,
	}
}

func toSiteDetailResponse(d *ports.SiteDetail) siteDetailResponse {
	return siteDetailResponse{
		ID:          d.ID,
		Name:        d.Name,
		DisplayName: d.DisplayName,
		Lat:         d.Lat,
		Lng:         d.Lng,
		Status:      d.Status,
		Notes:       d.Notes,
		CheckCount:  d.CheckCount,
		LastChecked: d.LastChecked,
		CreatedAt:   d.CreatedAt,
		History:     toChangeResponses(d.History),
	}
}

func toChangeResponses(items []ports.ChangeItem) []changeItemResponse {
	out := make([]changeItemResponse, len(items))
	for i, it := range items {
		out[i] = changeItemResponse{
			SiteID:         it.SiteID,
			SiteName:       it.SiteName,
			PreviousStatus: it.PreviousStatus,
			NewStatus:      it.NewStatus,
			Notes:          it.Notes,
			Operator:       it.Operator,
			Timestamp:      it.Timestamp,
		}
	}
	return out
}
