package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var transitionCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wiki_review_transitions_total",
	Help: "Review workflow transitions, by transition and outcome",
}, []string{"transition", "outcome"})

var transitionRetryCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wiki_review_transition_retries_total",
	Help: "Transitions retried after a lock conflict",
}, []string{"transition"})

var roleChangeCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wiki_role_changes_total",
	Help: "Automatic role and auto-approve changes",
}, []string{"kind"})

var notificationDropCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wiki_notifications_dropped_total",
	Help: "Notifications that were skipped or failed to publish",
}, []string{"reason"})

var roleSyncCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "wiki_rolesync_profiles_total",
	Help: "Profiles processed by the batch role recompute",
}, []string{"result"})
