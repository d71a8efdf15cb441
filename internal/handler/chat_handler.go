/*
Package handler provides HTTP handler functions for the conversation REST
surface: the chat list, message history, and the REST send path.

Messages posted over REST are persisted through the same store path as the
realtime channel and then fanned out through the gateway, so a client that
mixes REST sends with an open socket sees one consistent stream.
*/
package handler

import (
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ecotrade/internal/app/chat"
	"ecotrade/internal/pkg/auth/jwt"
	"ecotrade/internal/pkg/errs"
	"ecotrade/internal/pkg/logx"
	"ecotrade/internal/pkg/req"
	"ecotrade/internal/pkg/resp"
)

const (
	defaultMessagePageSize = 50
	maxMessagePageSize     = 100
)

// requireChat loads a conversation and verifies the caller is a participant.
// An unknown chat id and a foreign chat produce the same error.
func requireChat(r *http.Request, deps *AppDeps, callerID primitive.ObjectID) (*chat.Chat, *errs.CustomError) {
	chatID := chi.URLParam(r, "chatId")
	if _, err := primitive.ObjectIDFromHex(chatID); err != nil {
		return nil, errs.NewError(errs.ErrChatAccessDenied)
	}

	conv, err := deps.Chats.FindChatByID(r.Context(), chatID)
	if err != nil {
		return nil, errs.NewError(errs.ErrChatAccessDenied)
	}
	if !conv.HasParticipant(callerID) {
		return nil, errs.NewError(errs.ErrChatAccessDenied)
	}
	return conv, nil
}

// HandleListChats returns the caller's conversation list, newest first, with
// the peers' display data attached.
func HandleListChats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		chats, err := deps.Chats.ListChats(r.Context(), callerID)
		if err != nil {
			logx.Error(err, "failed to list chats", "user_id", callerID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		peerIDs := make([]primitive.ObjectID, 0, len(chats))
		for _, c := range chats {
			if oid, err := primitive.ObjectIDFromHex(c.OtherParticipant); err == nil {
				peerIDs = append(peerIDs, oid)
			}
		}
		participants, err := deps.Users.Summaries(r.Context(), peerIDs)
		if err != nil {
			logx.Error(err, "failed to load chat participants", "user_id", callerID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"chats":        chats,
			"participants": participants,
		})
	}
}

type CreateChatInput struct {
	UserID string `json:"userId"`
}

// HandleCreateChat opens (or reuses) the conversation with another user.
func HandleCreateChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input CreateChatInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		peerID, err := primitive.ObjectIDFromHex(input.UserID)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if peerID == callerID {
			resp.RespondError(w, r, errs.NewError(errs.ErrSelfChat))
			return
		}
		if _, err := deps.Users.GetByID(r.Context(), peerID); err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		conv, err := deps.Chats.CreateOrGet(r.Context(), callerID, peerID)
		if err != nil {
			logx.Error(err, "failed to create chat", "user_id", callerID.Hex(), "peer_id", peerID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"chat": conv})
	}
}

// HandleOnlineUsers reports which users currently hold a live connection.
func HandleOnlineUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"onlineUsers": deps.Gateway.OnlineUsers(),
		})
	}
}

// HandleListMessages returns a page of a conversation's history, enriched
// with sender display data.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		conv, customErr := requireChat(r, deps, callerID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		page := queryInt(r, "page", 1)
		limit := queryInt(r, "limit", defaultMessagePageSize)
		if limit > maxMessagePageSize {
			limit = maxMessagePageSize
		}

		messages, total, err := deps.Chats.ListMessages(r.Context(), conv.ID, page, limit)
		if err != nil {
			logx.Error(err, "failed to list messages", "chat_id", conv.ID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		senderIDs := make([]primitive.ObjectID, 0, 2)
		seen := make(map[primitive.ObjectID]struct{}, 2)
		for _, m := range messages {
			if _, ok := seen[m.Sender]; !ok {
				seen[m.Sender] = struct{}{}
				senderIDs = append(senderIDs, m.Sender)
			}
		}
		senders, err := deps.Users.Summaries(r.Context(), senderIDs)
		if err != nil {
			logx.Error(err, "failed to load message senders", "chat_id", conv.ID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		wire := make([]chat.WireMessage, 0, len(messages))
		for _, m := range messages {
			info := chat.SenderInfo{ID: m.Sender.Hex()}
			if s, ok := senders[m.Sender.Hex()]; ok {
				info.Name = s.Name
				info.Avatar = s.Avatar
			}
			wire = append(wire, chat.WireMessage{Message: m, SenderInfo: info})
		}

		resp.RespondSuccess(w, r, map[string]any{
			"messages": wire,
			"total":    total,
		})
	}
}

type PostMessageInput struct {
	Content string `json:"content"`
}

// HandlePostMessage persists a message over REST and hands it to the gateway
// for realtime delivery.
func HandlePostMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input PostMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}
		if blankContent(input.Content) {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentInvalid))
			return
		}
		if utf8.RuneCountInString(input.Content) > chat.MaxContentLength {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		conv, customErr := requireChat(r, deps, callerID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, err := deps.Chats.SaveMessage(r.Context(), conv.ID.Hex(), callerID.Hex(), input.Content, time.Now().UTC())
		if err != nil {
			logx.Error(err, "failed to save message", "chat_id", conv.ID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		wire := chat.WireMessage{Message: *msg, SenderInfo: senderInfoFor(r, deps, payload, callerID)}
		deps.Gateway.FanOutMessage(r.Context(), conv.ID.Hex(), callerID.Hex(), wire)

		resp.RespondSuccess(w, r, map[string]any{"message": wire})
	}
}

// HandleMarkRead records that the caller has seen the conversation.
func HandleMarkRead(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, callerID, customErr := identity(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		conv, customErr := requireChat(r, deps, callerID)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Chats.MarkRead(r.Context(), conv.ID, callerID); err != nil {
			logx.Error(err, "failed to mark chat read", "chat_id", conv.ID.Hex())
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"chatId": conv.ID.Hex()})
	}
}

// senderInfoFor resolves the caller's display data, falling back to the
// token's name claim when the profile lookup fails.
func senderInfoFor(r *http.Request, deps *AppDeps, payload *jwt.Payload, callerID primitive.ObjectID) chat.SenderInfo {
	info := chat.SenderInfo{ID: callerID.Hex(), Name: payload.Name}
	summaries, err := deps.Users.Summaries(r.Context(), []primitive.ObjectID{callerID})
	if err != nil {
		return info
	}
	if s, ok := summaries[callerID.Hex()]; ok {
		info.Name = s.Name
		info.Avatar = s.Avatar
	}
	return info
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func blankContent(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
