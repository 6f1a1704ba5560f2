package chat

import "github.com/prometheus/client_golang/prometheus"

var (
	messagesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vireya_chat_messages_total",
			Help: "Chat messages appended, by sender.",
		},
		[]string{"sender"},
	)
	replyFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vireya_chat_reply_failures_total",
			Help: "Reply generations that failed or timed out.",
		},
	)
	persistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vireya_chat_persist_failures_total",
			Help: "Chat log load/save failures recovered silently.",
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(messagesAppended, replyFailures, persistFailures)
}
