package chatcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/tutor/pkg/config"
)

var _ = Describe("Chat Command", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		mu       sync.Mutex
		prompts  []string
		status   int
		restores []func()
	)

	setenv := func(key, value string) {
		old, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		restores = append(restores, func() {
			if had {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	BeforeEach(func() {
		ctx = context.Background()
		prompts = nil
		status = http.StatusOK

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Messages []struct {
					Role    string `json:"role"`
					Content string `json:"content"`
				} `json:"messages"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)

			mu.Lock()
			if len(body.Messages) > 0 && body.Messages[0].Role == "system" {
				prompts = append(prompts, body.Messages[0].Content)
			}
			mu.Unlock()

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status != http.StatusOK {
				_, _ = w.Write([]byte(`{"error":{"message":"Wrong API Key","type":"invalid_request_error"}}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-test",
				"object":  "chat.completion",
				"model":   "llama-4-scout-17b-16e-instruct",
				"choices": []map[string]any{{"index": 0, "finish_reason": "stop", "message": map[string]string{"role": "assistant", "content": "Tell me more."}}},
			})
		}))

		setenv(config.EnvBaseURL, server.URL)
		setenv(config.EnvAPIKey, "csk-test")
	})

	AfterEach(func() {
		server.Close()
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		restores = nil
	})

	run := func(input string, args ...string) (string, error) {
		cmd := NewChatCmd()
		out := &bytes.Buffer{}
		cmd.SetIn(strings.NewReader(input))
		cmd.SetOut(out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		err := cmd.ExecuteContext(ctx)
		return out.String(), err
	}

	It("tutors over piped input", func() {
		out, err := run("I want to learn calculus\nI know limits\n/state\n")
		Expect(err).NotTo(HaveOccurred())

		Expect(strings.Count(out, "Tell me more.")).To(Equal(2))
		Expect(out).To(ContainSubstring(`"current_phase": "teaching"`))
		Expect(out).To(ContainSubstring(`"knowledge_level": "beginner"`))

		Expect(prompts).To(HaveLen(2))
		Expect(prompts[0]).To(ContainSubstring("Ask them what topic"))
		Expect(prompts[1]).To(ContainSubstring("The user wants to learn about I want to learn calculus."))
	})

	It("sends no system prompt in the chat variant", func() {
		out, err := run("hello\n", "--variant", "chat")
		Expect(err).NotTo(HaveOccurred())

		Expect(out).To(Equal("Tell me more.\n"))
		Expect(prompts).To(BeEmpty())
	})

	It("reports completion failures with the API key hint", func() {
		status = http.StatusUnauthorized

		out, err := run("hello\n")
		Expect(err).NotTo(HaveOccurred())

		Expect(out).To(ContainSubstring("An error occurred"))
		Expect(out).To(ContainSubstring("Please make sure your CEREBRAS_API_KEY is set"))
	})

	It("rejects unknown variants", func() {
		_, err := run("hello\n", "--variant", "quiz")

		Expect(err).To(MatchError(ContainSubstring(`unknown variant "quiz"`)))
	})
})
