// Package config loads and assembles the application configuration.
//
// Configuration is composed from partial Config structs owned by each core
// and feature package (database, storage, logger, server, character). Values
// come from three layers, in increasing precedence:
//
//  1. 'default' struct tags on each partial config
//  2. a .env file in the working directory (via godotenv)
//  3. process environment variables (via viper's AutomaticEnv)
//
// Nested keys map to environment variables with underscores, e.g.
// database.host -> DATABASE_HOST and character.batch_size ->
// CHARACTER_BATCH_SIZE.
package config
