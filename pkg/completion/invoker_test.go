package completion_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/papercomputeco/tutor/pkg/completion"
	"github.com/papercomputeco/tutor/pkg/llm"
)

type capturedRequest struct {
	Path          string
	Authorization string
	Body          openai.ChatCompletionRequest
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   llm.DefaultModel,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

var _ = Describe("Invoker", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		requests []capturedRequest
		respond  func(w http.ResponseWriter)
		invoker  *completion.Invoker
	)

	BeforeEach(func() {
		ctx = context.Background()
		requests = nil
		respond = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(chatResponse("Hello! What would you like to learn?"))
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body openai.ChatCompletionRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			requests = append(requests, capturedRequest{
				Path:          r.URL.Path,
				Authorization: r.Header.Get("Authorization"),
				Body:          body,
			})
			respond(w)
		}))

		invoker = completion.New(completion.Config{
			BaseURL: server.URL + "/v1/",
			APIKey:  "test-key",
			Timeout: 5 * time.Second,
		}, zap.NewNop())
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns the first choice's content", func() {
		history := []llm.Turn{llm.UserTurn("hi")}

		reply, err := invoker.Complete(ctx, nil, history, llm.DefaultModel)

		Expect(err).NotTo(HaveOccurred())
		Expect(reply).To(Equal("Hello! What would you like to learn?"))
	})

	It("makes exactly one authenticated call to the chat-completions endpoint", func() {
		_, err := invoker.Complete(ctx, nil, []llm.Turn{llm.UserTurn("hi")}, llm.DefaultModel)
		Expect(err).NotTo(HaveOccurred())

		Expect(requests).To(HaveLen(1))
		Expect(requests[0].Path).To(Equal("/v1/chat/completions"))
		Expect(requests[0].Authorization).To(Equal("Bearer test-key"))
		Expect(requests[0].Body.Model).To(Equal(llm.DefaultModel))
	})

	It("prepends the system prompt to the history", func() {
		prompt := "You are a tutor."
		history := []llm.Turn{
			llm.UserTurn("teach me chess"),
			llm.AssistantTurn("Sure. How well do you play?"),
			llm.UserTurn("not at all"),
		}

		_, err := invoker.Complete(ctx, &prompt, history, llm.DefaultModel)
		Expect(err).NotTo(HaveOccurred())

		messages := requests[0].Body.Messages
		Expect(messages).To(HaveLen(4))
		Expect(messages[0].Role).To(Equal("system"))
		Expect(messages[0].Content).To(Equal(prompt))
		Expect(messages[1].Content).To(Equal("teach me chess"))
		Expect(messages[2].Role).To(Equal("assistant"))
		Expect(messages[3].Content).To(Equal("not at all"))
	})

	It("sends the history alone without a system prompt", func() {
		_, err := invoker.Complete(ctx, nil, []llm.Turn{llm.UserTurn("hi")}, llm.DefaultModel)
		Expect(err).NotTo(HaveOccurred())

		Expect(requests[0].Body.Messages).To(HaveLen(1))
		Expect(requests[0].Body.Messages[0].Role).To(Equal("user"))
	})

	It("wraps rejected credentials", func() {
		respond = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"Wrong API Key","type":"invalid_request_error","code":"wrong_api_key"}}`))
		}

		_, err := invoker.Complete(ctx, nil, []llm.Turn{llm.UserTurn("hi")}, llm.DefaultModel)

		var completionErr *completion.CompletionError
		Expect(errors.As(err, &completionErr)).To(BeTrue())

		var apiErr *openai.APIError
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.HTTPStatusCode).To(Equal(http.StatusUnauthorized))
	})

	It("wraps a response without choices", func() {
		respond = func(w http.ResponseWriter) {
			body := chatResponse("")
			body["choices"] = []any{}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(body)
		}

		_, err := invoker.Complete(ctx, nil, []llm.Turn{llm.UserTurn("hi")}, llm.DefaultModel)

		var completionErr *completion.CompletionError
		Expect(errors.As(err, &completionErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("no choices"))
	})

	It("wraps a malformed response", func() {
		respond = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("not json"))
		}

		_, err := invoker.Complete(ctx, nil, []llm.Turn{llm.UserTurn("hi")}, llm.DefaultModel)

		var completionErr *completion.CompletionError
		Expect(errors.As(err, &completionErr)).To(BeTrue())
	})

	It("wraps an unreachable service", func() {
		server.Close()

		_, err := invoker.Complete(ctx, nil, []llm.Turn{llm.UserTurn("hi")}, llm.DefaultModel)

		var completionErr *completion.CompletionError
		Expect(errors.As(err, &completionErr)).To(BeTrue())
	})
})

var _ = Describe("CompletionError", func() {
	It("unwraps to its cause", func() {
		cause := errors.New("boom")
		err := &completion.CompletionError{Err: cause}

		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err.Error()).To(Equal("completion failed: boom"))
	})
})
