// Package domain contains the core business entities of the dream journal:
// users, dreams, their stored analyses, community posts and subscription
// plans. It is independent of any storage or delivery mechanism.
package domain
