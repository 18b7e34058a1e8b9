package handler

import (
	"errors"
	"net/http"
	"time"

	communitydomain "community-grocery-go/internal/domain/community"
)

type pointRequest struct {
	Type        string    `json:"type" validate:"omitempty,eq=Point"`
	Coordinates []float64 `json:"coordinates" validate:"required,len=2"`
}

type createCommunityRequest struct {
	Name     string        `json:"name" validate:"required,max=120"`
	Location *pointRequest `json:"location" validate:"required"`
}

type voteRequest struct {
	DeliveryTime string `json:"deliveryTime" validate:"required,oneof=Morning Afternoon Evening"`
}

type preferencesRequest struct {
	DeliveryDay  string `json:"deliveryDay" validate:"required"`
	DeliveryTime string `json:"deliveryTime" validate:"required"`
}

type pointResponse struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type preferencesResponse struct {
	DeliveryDay  communitydomain.DeliveryDay  `json:"deliveryDay"`
	DeliveryTime communitydomain.DeliveryTime `json:"deliveryTime"`
}

type memberUserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type memberResponse struct {
	User         memberUserResponse           `json:"user"`
	DeliveryTime communitydomain.DeliveryTime `json:"deliveryTime"`
	JoinedAt     time.Time                    `json:"joinedAt"`
}

type communityResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Location    pointResponse       `json:"location"`
	Founder     string              `json:"founder"`
	Members     []memberResponse    `json:"members"`
	Preferences preferencesResponse `json:"preferences"`
	Version     int64               `json:"version"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type joinResponse struct {
	Message   string            `json:"message"`
	Community communityResponse `json:"community"`
}

type votesResponse struct {
	Preferences preferencesResponse `json:"preferences"`
	Members     []memberResponse    `json:"members"`
}

func (h *Handlers) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req createCommunityRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	result, err := h.Communities.CreateCommunity(r.Context(), communitydomain.CreateInput{
		FounderID: user.ID,
		Name:      req.Name,
		Location:  communitydomain.Point{Longitude: req.Location.Coordinates[0], Latitude: req.Location.Coordinates[1]},
	})
	if err != nil {
		h.writeCommunityError(w, r, "communities.create", err, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusCreated, toCommunityResponse(result))
}

func (h *Handlers) ListCommunities(w http.ResponseWriter, r *http.Request) {
	communities, err := h.Communities.ListCommunities(r.Context())
	if err != nil {
		h.logger(r.Context()).InternalError("communities.list: list failed", err)
		writeInternal(w, "failed to list communities", err)
		return
	}

	response := make([]communityResponse, 0, len(communities))
	for i := range communities {
		response = append(response, toCommunityResponse(&communities[i]))
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) GetCommunity(w http.ResponseWriter, r *http.Request) {
	communityID, ok := h.communityParam(w, r, "communities.get")
	if !ok {
		return
	}
	result, err := h.Communities.GetCommunity(r.Context(), communityID)
	if err != nil {
		h.writeCommunityError(w, r, "communities.get", err, "community_id", communityID)
		return
	}
	writeJSON(w, http.StatusOK, toCommunityResponse(result))
}

func (h *Handlers) JoinCommunity(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	communityID, ok := h.communityParam(w, r, "communities.join")
	if !ok {
		return
	}
	result, err := h.Communities.Join(r.Context(), communityID, user.ID)
	if err != nil {
		h.writeCommunityError(w, r, "communities.join", err, "community_id", communityID, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, joinResponse{
		Message:   "joined community",
		Community: toCommunityResponse(result),
	})
}

func (h *Handlers) LeaveCommunity(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	communityID, ok := h.communityParam(w, r, "communities.leave")
	if !ok {
		return
	}
	if err := h.Communities.Leave(r.Context(), communityID, user.ID); err != nil {
		h.writeCommunityError(w, r, "communities.leave", err, "community_id", communityID, "user_id", user.ID)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "left community"})
}

func (h *Handlers) ListCommunityMembers(w http.ResponseWriter, r *http.Request) {
	communityID, ok := h.communityParam(w, r, "communities.list_members")
	if !ok {
		return
	}
	members, err := h.Communities.ListMembers(r.Context(), communityID)
	if err != nil {
		h.writeCommunityError(w, r, "communities.list_members", err, "community_id", communityID)
		return
	}
	writeJSON(w, http.StatusOK, toMemberResponses(members))
}

func (h *Handlers) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	day, err := communitydomain.ParseDeliveryDay(req.DeliveryDay)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	slot, err := communitydomain.ParsePreferenceTime(req.DeliveryTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	communityID, ok := h.communityParam(w, r, "communities.update_preferences")
	if !ok {
		return
	}
	prefs, err := h.Communities.UpdatePreferences(r.Context(), communityID, day, slot)
	if err != nil {
		h.writeCommunityError(w, r, "communities.update_preferences", err, "community_id", communityID)
		return
	}
	writeJSON(w, http.StatusOK, toPreferencesResponse(*prefs))
}

func (h *Handlers) Vote(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req voteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	communityID, ok := h.communityParam(w, r, "communities.vote")
	if !ok {
		return
	}
	votes, err := h.Communities.Vote(r.Context(), communityID, user.ID, communitydomain.DeliveryTime(req.DeliveryTime))
	if err != nil {
		h.writeCommunityError(w, r, "communities.vote", err, "community_id", communityID, "user_id", user.ID)
		return
	}
	writeJSON(w, http.StatusOK, toVotesResponse(votes))
}

func (h *Handlers) GetVotes(w http.ResponseWriter, r *http.Request) {
	communityID, ok := h.communityParam(w, r, "communities.get_votes")
	if !ok {
		return
	}
	votes, err := h.Communities.GetVotes(r.Context(), communityID)
	if err != nil {
		h.writeCommunityError(w, r, "communities.get_votes", err, "community_id", communityID)
		return
	}
	writeJSON(w, http.StatusOK, toVotesResponse(votes))
}

// communityParam writes a 404 for ids that cannot name a community.
func (h *Handlers) communityParam(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	communityID, valid := pathID(r)
	if !valid {
		h.writeCommunityError(w, r, op, communitydomain.ErrCommunityNotFound, "community_id", communityID)
	}
	return communityID, valid
}

func (h *Handlers) writeCommunityError(w http.ResponseWriter, r *http.Request, op string, err error, args ...any) {
	log := h.logger(r.Context())
	switch {
	case errors.Is(err, communitydomain.ErrCommunityNotFound):
		log.BusinessError(op+": community not found", err, args...)
		writeError(w, http.StatusNotFound, "community_not_found", "community not found")
	case errors.Is(err, communitydomain.ErrUserNotFound):
		log.BusinessError(op+": user not found", err, args...)
		writeError(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.Is(err, communitydomain.ErrAlreadyMember):
		log.BusinessError(op+": already a member", err, args...)
		writeError(w, http.StatusBadRequest, "already_member", "user is already a member of this community")
	case errors.Is(err, communitydomain.ErrAlreadyInAnotherCommunity):
		log.BusinessError(op+": member of another community", err, args...)
		writeError(w, http.StatusBadRequest, "already_in_another_community", "user is already a member of another community")
	case errors.Is(err, communitydomain.ErrNotMember):
		log.BusinessError(op+": not a member", err, args...)
		writeError(w, http.StatusForbidden, "not_member", "user is not a member of this community")
	case errors.Is(err, communitydomain.ErrNameRequired),
		errors.Is(err, communitydomain.ErrInvalidLocation),
		errors.Is(err, communitydomain.ErrInvalidDeliveryTime),
		errors.Is(err, communitydomain.ErrInvalidDeliveryDay):
		log.BusinessError(op+": invalid input", err, args...)
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, communitydomain.ErrVersionConflict):
		log.BusinessError(op+": concurrent update retries exhausted", err, args...)
		writeError(w, http.StatusConflict, "version_conflict", "community was modified concurrently, retry the request")
	default:
		log.InternalError(op+": failed", err, args...)
		writeInternal(w, "internal error", err)
	}
}

func toCommunityResponse(details *communitydomain.Details) communityResponse {
	community := details.Community
	return communityResponse{
		ID:   community.ID,
		Name: community.Name,
		Location: pointResponse{
			Type:        "Point",
			Coordinates: [2]float64{community.Longitude, community.Latitude},
		},
		Founder:     community.FounderID,
		Members:     toMemberResponses(details.Members),
		Preferences: toPreferencesResponse(community.Preferences()),
		Version:     community.Version,
		CreatedAt:   community.CreatedAt,
		UpdatedAt:   community.UpdatedAt,
	}
}

func toMemberResponses(members []communitydomain.MemberProfile) []memberResponse {
	response := make([]memberResponse, 0, len(members))
	for _, member := range members {
		response = append(response, memberResponse{
			User: memberUserResponse{
				ID:    member.UserID,
				Name:  member.Name,
				Email: member.Email,
			},
			DeliveryTime: member.DeliveryTime,
			JoinedAt:     member.JoinedAt,
		})
	}
	return response
}

func toPreferencesResponse(prefs communitydomain.Preferences) preferencesResponse {
	return preferencesResponse{DeliveryDay: prefs.DeliveryDay, DeliveryTime: prefs.DeliveryTime}
}

func toVotesResponse(votes *communitydomain.Votes) votesResponse {
	return votesResponse{
		Preferences: toPreferencesResponse(votes.Preferences),
		Members:     toMemberResponses(votes.Members),
	}
}
