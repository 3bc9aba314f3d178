// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package integration

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/oklog/ulid/v2"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/holokit/internal/content"
	"github.com/holomush/holokit/internal/game"
	"github.com/holomush/holokit/internal/session"
	"github.com/holomush/holokit/internal/store"
)

var _ = Describe("Progression with a PostgreSQL save store", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		saves     *store.PostgresStore
		pack      *content.Pack
	)

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("holokit_test"),
			postgres.WithUsername("holokit"),
			postgres.WithPassword("holokit"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err := container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		migrator, err := store.NewMigrator(connStr)
		Expect(err).NotTo(HaveOccurred())
		Expect(migrator.Up()).To(Succeed())
		Expect(migrator.Close()).To(Succeed())

		saves, err = store.NewPostgresStore(ctx, connStr)
		Expect(err).NotTo(HaveOccurred())

		pack, err = content.Load("../../internal/content/testdata/valid.yaml")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if saves != nil {
			saves.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	newSession := func(profile ulid.ULID) *session.Session {
		s, err := session.New(pack, saves, profile)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
		Expect(s.Start(ctx)).To(Succeed())
		return s
	}

	It("carries XP and achievement progress across sessions", func() {
		profile := store.NewProfileID()

		first := newSession(profile)
		Expect(first.GainXP(260)).To(Succeed())
		for range 4 {
			Expect(first.Publish(game.ItemUsed{Item: "potion.health"})).To(Succeed())
		}
		Expect(first.Player().Level()).To(Equal(3))
		Expect(first.End(ctx)).To(Succeed())

		second := newSession(profile)
		Expect(second.Player().XP()).To(Equal(260))
		Expect(second.Player().Level()).To(Equal(3))

		potions, ok := second.Manager().Get("potion-addict")
		Expect(ok).To(BeTrue())
		Expect(potions.Times()).To(Equal(5))
	})

	It("achieves countdown achievements after the last trigger", func() {
		profile := store.NewProfileID()
		s := newSession(profile)

		for range 3 {
			Expect(s.Publish(game.PlayerKilled{Weapon: "rifle.ak", Victim: "nemesis"})).To(Succeed())
		}

		Expect(s.Recorder().Achieved("nemesis")).To(BeTrue())
		Expect(s.Recorder().Achieved("first-blood")).To(BeTrue())
		Expect(s.End(ctx)).To(Succeed())

		saved, err := saves.Load(ctx, profile)
		Expect(err).NotTo(HaveOccurred())
		Expect(saved.Achievements).To(HaveKeyWithValue("nemesis", 0))
	})
})
