// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/store"
)

// setupPostgres starts a PostgreSQL container, migrates it and returns a
// connected store.
func setupPostgres() (*store.PostgresStore, *store.Migrator, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
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
	if err != nil {
		return nil, nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, nil, err
	}

	saves, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		saves.Close()
		_ = migrator.Close()
		_ = container.Terminate(ctx)
	}
	return saves, migrator, cleanup, nil
}

var _ = Describe("PostgresStore", func() {
	var saves *store.PostgresStore
	var migrator *store.Migrator
	var cleanup func()

	BeforeEach(func() {
		var err error
		saves, migrator, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	It("applies every migration", func() {
		version, dirty, err := migrator.Version()
		Expect(err).NotTo(HaveOccurred())
		Expect(dirty).To(BeFalse())
		Expect(version).To(Equal(uint(2)))

		pending, err := migrator.PendingMigrations()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending).To(BeEmpty())
	})

	It("returns NOT_FOUND for an unknown profile", func() {
		_, err := saves.Load(context.Background(), store.NewProfileID())
		Expect(errs.HasCode(err, errs.CodeNotFound)).To(BeTrue())
	})

	It("round-trips and overwrites a save", func() {
		ctx := context.Background()
		save := store.NewSaveGame(store.NewProfileID())
		save.XP = 120
		save.Achievements["potions"] = 3

		Expect(saves.Save(ctx, save)).To(Succeed())

		loaded, err := saves.Load(ctx, save.ProfileID)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.XP).To(Equal(120))
		Expect(loaded.Achievements).To(Equal(map[string]int{"potions": 3}))
		Expect(loaded.UpdatedAt).NotTo(BeZero())

		save.XP = 300
		save.Achievements["potions"] = 0
		Expect(saves.Save(ctx, save)).To(Succeed())

		loaded, err = saves.Load(ctx, save.ProfileID)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.XP).To(Equal(300))
		Expect(loaded.Achievements).To(Equal(map[string]int{"potions": 0}))
	})
})
