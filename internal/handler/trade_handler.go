/*
Package handler provides HTTP handler functions for the trade-request workflow:
requesting an item, answering a request, completing the trade, and rating it.

State changes push a realtime notification to the other party's personal room;
a party without a live connection simply sees the change on their next fetch.
*/
package handler

import (
	"net/http"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/app/db"
	"ecotrade/internal/app/gateway"
	"ecotrade/internal/app/item"
	"ecotrade/internal/app/trade"
	"ecotrade/internal/pkg/errs"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/req"
	"ecotrade/internal/pkg/resp"
)

const maxTradeMessageLength = 500

// TradeNotification is the payload of every trade workflow event.
type TradeNotification struct {
	Request   *trade.Request `json:"tradeRequest"`
	ItemTitle string         `json:"itemTitle,omitempty"`
	ActorName string         `json:"actorName,omitempty"`
}

type RequestTradeInput struct {
	Message string `json:"message"`
}

// HandleRequestTrade opens a pending trade request on someone else's item.
func HandleRequestTrade(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		itemID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input RequestTradeInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if utf8.RuneCountInString(input.Message) > maxTradeMessageLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		it, err := deps.Items.Get(r.Context(), itemID)
		if err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrItemNotFound))
				return
			}
			logx.Error(err, "failed to fetch item for trade request", "item_id", itemID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if it.User == callerID {
			resp.RespondError(w, r, errs.NewError(errs.ErrSelfTrade))
			return
		}
		if it.Status != item.StatusAvailable {
			resp.RespondError(w, r, errs.NewError(errs.ErrItemNotAvailable))
			return
		}

		open, err := deps.Trades.HasOpenRequest(r.Context(), itemID, callerID)
		if err != nil {
			logx.Error(err, "failed to check for open trade request", "item_id", itemID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if open {
			resp.RespondError(w, r, errs.NewError(errs.ErrDuplicateTradeRequest))
			return
		}

		created, err := deps.Trades.CreateRequest(r.Context(), &trade.Request{
			Item:      itemID,
			Owner:     it.User,
			Recipient: callerID,
			Message:   input.Message,
		})
		if err != nil {
			logx.Error(err, "failed to create trade request", "item_id", itemID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		deps.Gateway.NotifyUser(it.User.Hex(), gateway.NewNotification(gateway.TypeTradeRequest, TradeNotification{
			Request:   created,
			ItemTitle: it.Title,
			ActorName: payload.Name,
		}))

		resp.RespondSuccess(w, r, map[string]any{"tradeRequest": created})
	}
}

type AnswerTradeInput struct {
	Status string `json:"status"`
}

// HandleAnswerTradeRequest records the owner's accept/decline decision on a
// pending request. Accepting moves the item into the pending state.
func HandleAnswerTradeRequest(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		requestID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input AnswerTradeInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.Status != trade.StatusAccepted && input.Status != trade.StatusDeclined {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		request, err := deps.Trades.GetRequest(r.Context(), requestID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrTradeRequestNotFound))
			return
		}
		if request.Owner != callerID {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		if err := deps.Trades.SetRequestStatus(r.Context(), requestID, input.Status); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrTradeRequestClosed))
				return
			}
			logx.Error(err, "failed to answer trade request", "request_id", requestID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		request.Status = input.Status

		if input.Status == trade.StatusAccepted {
			if err := deps.Items.SetStatus(r.Context(), request.Item, item.StatusPending); err != nil {
				logx.Error(err, "failed to mark item pending after accept", "item_id", request.Item.Hex())
			}
		}

		deps.Gateway.NotifyUser(request.Recipient.Hex(), gateway.NewNotification(gateway.TypeTradeRequestStatus, TradeNotification{
			Request:   request,
			ActorName: payload.Name,
		}))

		resp.RespondSuccess(w, r, map[string]any{"tradeRequest": request})
	}
}

// HandleCompleteTrade marks an accepted trade as completed. Either party can
// confirm; the item becomes traded and both trade counters are bumped.
func HandleCompleteTrade(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		requestID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		request, err := deps.Trades.GetRequest(r.Context(), requestID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrTradeRequestNotFound))
			return
		}
		if request.Owner != callerID && request.Recipient != callerID {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}

		if err := deps.Trades.CompleteRequest(r.Context(), requestID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrTradeRequestClosed))
				return
			}
			logx.Error(err, "failed to complete trade", "request_id", requestID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		request.Status = trade.StatusCompleted

		if err := deps.Items.SetStatus(r.Context(), request.Item, item.StatusTraded); err != nil {
			logx.Error(err, "failed to mark item traded", "item_id", request.Item.Hex())
		}
		for _, id := range []primitive.ObjectID{request.Owner, request.Recipient} {
			if err := deps.Users.IncTotalTrades(r.Context(), id); err != nil {
				logx.Error(err, "failed to bump trade counter", "user_id", id.Hex())
			}
		}

		other := request.Owner
		if callerID == request.Owner {
			other = request.Recipient
		}
		deps.Gateway.NotifyUser(other.Hex(), gateway.NewNotification(gateway.TypeTradeCompleted, TradeNotification{
			Request:   request,
			ActorName: payload.Name,
		}))

		resp.RespondSuccess(w, r, map[string]any{"tradeRequest": request})
	}
}

type RateTradeInput struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// HandleRateTrade records the caller's one-time review of a completed trade
// and folds the score into the other party's running average.
func HandleRateTrade(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		requestID, customErr := pathObjectID(r, "id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input RateTradeInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if input.Rating < 1 || input.Rating > 5 {
			resp.RespondError(w, r, errs.NewError(errs.ErrRatingInvalid))
			return
		}

		request, err := deps.Trades.GetRequest(r.Context(), requestID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrTradeRequestNotFound))
			return
		}
		if request.Owner != callerID && request.Recipient != callerID {
			resp.RespondError(w, r, errs.NewError(errs.ErrForbidden))
			return
		}
		if request.Status != trade.StatusCompleted {
			resp.RespondError(w, r, errs.NewError(errs.ErrTradeRequestClosed))
			return
		}

		rated := request.Owner
		if callerID == request.Owner {
			rated = request.Recipient
		}

		rating, err := deps.Trades.CreateRating(r.Context(), &trade.Rating{
			Trade:  requestID,
			Rater:  callerID,
			Rated:  rated,
			Rating: input.Rating,
			Review: input.Review,
		})
		if err != nil {
			if db.IsDuplicateKey(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrAlreadyRated))
				return
			}
			logx.Error(err, "failed to store trade rating", "request_id", requestID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Users.ApplyRating(r.Context(), rated, input.Rating); err != nil {
			logx.Error(err, "failed to fold rating into profile", "user_id", rated.Hex())
		}

		resp.RespondSuccess(w, r, map[string]any{"rating": rating})
	}
}
