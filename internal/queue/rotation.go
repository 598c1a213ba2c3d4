package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	db "github.com/ymadz/rallio-sub004/internal/db"
	dbgen "github.com/ymadz/rallio-sub004/internal/db/generated"
)

// StartedGame is the result of StartNextGame: the game row plus the
// participants pulled off the front of the queue.
type StartedGame struct {
	Game    dbgen.Game
	Players []dbgen.QueueParticipant
}

// StartNextGame pulls the next N waiting participants in position order
// (N depends on the session's game format), moves them to playing, and opens
// a game with the next sequence number. Teams are split sequentially: the
// front half of the pulled players versus the back half.
func (e *Engine) StartNextGame(ctx context.Context, actor Actor, sessionID string) (StartedGame, error) {
	var started StartedGame
	var events []Event
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		events = events[:0]
		started = StartedGame{}
		session, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(session, actor); err != nil {
			return err
		}
		effective := EffectiveStatus(session, e.now())
		if effective != StatusActive && effective != StatusOpen {
			return fmt.Errorf("%w: session is %s", ErrInvalidState, effective)
		}
		if _, err := txdb.Queries.GetSessionActiveGame(ctx, sessionID); err == nil {
			return fmt.Errorf("%w: a game is already in progress", ErrInvalidState)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check active game: %w", err)
		}

		needed := PlayersPerGame(session.GameFormat)
		waiting, err := txdb.Queries.ListWaitingParticipants(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("list waiting participants: %w", err)
		}
		if len(waiting) < needed {
			return fmt.Errorf("%w: need %d, found %d", ErrInsufficientPlayers, needed, len(waiting))
		}
		picked := waiting[:needed]

		sequence, err := txdb.Queries.MaxGameSequence(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("max game sequence: %w", err)
		}

		game, err := txdb.Queries.CreateGame(ctx, dbgen.CreateGameParams{
			ID:             uuid.NewString(),
			SessionID:      sessionID,
			SequenceNumber: sequence + 1,
			GameFormat:     session.GameFormat,
			StartedAt:      e.now(),
		})
		if err != nil {
			return fmt.Errorf("create game: %w", err)
		}

		for idx, participant := range picked {
			team := "a"
			if idx >= needed/2 {
				team = "b"
			}
			if err := txdb.Queries.AddGamePlayer(ctx, dbgen.AddGamePlayerParams{
				GameID:        game.ID,
				ParticipantID: participant.ID,
				Team:          team,
				Slot:          int64(idx),
			}); err != nil {
				return fmt.Errorf("add game player %s: %w", participant.ID, err)
			}
			if err := txdb.Queries.SetParticipantPlaying(ctx, participant.ID); err != nil {
				return fmt.Errorf("set participant %s playing: %w", participant.ID, err)
			}
			events = append(events, Event{
				Type:      EventTurnStarted,
				UserID:    participant.UserID,
				SessionID: sessionID,
				Message:   fmt.Sprintf("You're up: game #%d is starting", game.SequenceNumber),
			})
		}

		// The promoted players vacate the front of the order.
		if err := recompactPositions(ctx, txdb.Queries, sessionID); err != nil {
			return err
		}

		started.Game = game
		started.Players = picked
		return nil
	})
	if err != nil {
		return StartedGame{}, err
	}
	e.emit(ctx, events)

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Str("game_id", started.Game.ID).
		Int64("sequence", started.Game.SequenceNumber).
		Int("player_count", len(started.Players)).
		Msg("Started next game")
	return started, nil
}

// CompleteGame records the result: every participant still in the game gains
// a played game (winners a won game), accrues the per-game fee, and rejoins
// the back of the waiting order in the order they were pulled off the front.
// Participants who left mid-game are skipped; their balance stays locked at
// leave time.
func (e *Engine) CompleteGame(ctx context.Context, actor Actor, sessionID, gameID string, winnerParticipantIDs []string) (dbgen.Game, error) {
	var game dbgen.Game
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		session, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(session, actor); err != nil {
			return err
		}

		current, err := loadGame(ctx, txdb.Queries, sessionID, gameID)
		if err != nil {
			return err
		}
		if current.Status != GameInProgress {
			return fmt.Errorf("%w: game is %s", ErrGameResolved, current.Status)
		}

		players, err := txdb.Queries.ListGamePlayers(ctx, gameID)
		if err != nil {
			return fmt.Errorf("list game players: %w", err)
		}
		inGame := make(map[string]bool, len(players))
		for _, player := range players {
			inGame[player.ParticipantID] = true
		}
		winners := make(map[string]bool, len(winnerParticipantIDs))
		for _, id := range winnerParticipantIDs {
			if !inGame[id] {
				return fmt.Errorf("%w: winner %s did not play this game", ErrGameMismatch, id)
			}
			winners[id] = true
		}

		// Seed re-append positions after the currently waiting players
		// (P4: fresh waiters outrank everyone who just played).
		nextPosition, err := txdb.Queries.MaxWaitingPosition(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("max waiting position: %w", err)
		}

		// ListGamePlayers returns slot order, which is the position order
		// the players were pulled in; re-appending in that order keeps the
		// rotation stable among the finishers.
		active := make([]dbgen.QueueParticipant, 0, len(players))
		for _, player := range players {
			participant, err := txdb.Queries.GetParticipant(ctx, player.ParticipantID)
			if err != nil {
				return fmt.Errorf("load participant %s: %w", player.ParticipantID, err)
			}
			if winners[player.ParticipantID] {
				if err := txdb.Queries.SetGamePlayerWon(ctx, dbgen.SetGamePlayerWonParams{
					GameID:        gameID,
					ParticipantID: player.ParticipantID,
				}); err != nil {
					return fmt.Errorf("mark winner %s: %w", player.ParticipantID, err)
				}
			}
			if participant.Status == ParticipantLeft {
				// Left mid-game: no accrual for the unfinished turn.
				continue
			}
			active = append(active, participant)
		}

		for _, participant := range active {
			won := int64(0)
			if winners[participant.ID] {
				won = 1
			}
			if _, err := txdb.Queries.ApplyGameResult(ctx, dbgen.ApplyGameResultParams{
				GamesWon:   won,
				AmountOwed: session.CostPerGame,
				ID:         participant.ID,
			}); err != nil {
				return fmt.Errorf("apply game result for %s: %w", participant.ID, err)
			}
			nextPosition++
			if err := txdb.Queries.SetParticipantWaiting(ctx, dbgen.SetParticipantWaitingParams{
				Position: sql.NullInt64{Int64: nextPosition, Valid: true},
				ID:       participant.ID,
			}); err != nil {
				return fmt.Errorf("return participant %s to waiting: %w", participant.ID, err)
			}
		}

		game, err = txdb.Queries.SetGameStatus(ctx, dbgen.SetGameStatusParams{
			Status:  GameCompleted,
			EndedAt: sql.NullTime{Time: e.now(), Valid: true},
			ID:      gameID,
		})
		if err != nil {
			return fmt.Errorf("complete game %s: %w", gameID, err)
		}
		return nil
	})
	if err != nil {
		return dbgen.Game{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Str("game_id", gameID).
		Int("winner_count", len(winnerParticipantIDs)).
		Msg("Completed game")
	return game, nil
}

// AbandonGame voids an in-progress game: players return to the back of the
// waiting order without accrual and the game never counts for anyone.
func (e *Engine) AbandonGame(ctx context.Context, actor Actor, sessionID, gameID string) (dbgen.Game, error) {
	var game dbgen.Game
	err := e.runInTx(ctx, func(txdb *db.DB) error {
		session, err := loadSession(ctx, txdb.Queries, sessionID)
		if err != nil {
			return err
		}
		if err := requireOrganizer(session, actor); err != nil {
			return err
		}

		current, err := loadGame(ctx, txdb.Queries, sessionID, gameID)
		if err != nil {
			return err
		}
		if current.Status != GameInProgress {
			return fmt.Errorf("%w: game is %s", ErrGameResolved, current.Status)
		}

		players, err := txdb.Queries.ListGamePlayers(ctx, gameID)
		if err != nil {
			return fmt.Errorf("list game players: %w", err)
		}
		nextPosition, err := txdb.Queries.MaxWaitingPosition(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("max waiting position: %w", err)
		}
		for _, player := range players {
			if player.ParticipantStatus != ParticipantPlaying {
				continue
			}
			nextPosition++
			if err := txdb.Queries.SetParticipantWaiting(ctx, dbgen.SetParticipantWaitingParams{
				Position: sql.NullInt64{Int64: nextPosition, Valid: true},
				ID:       player.ParticipantID,
			}); err != nil {
				return fmt.Errorf("return participant %s to waiting: %w", player.ParticipantID, err)
			}
		}

		game, err = txdb.Queries.SetGameStatus(ctx, dbgen.SetGameStatusParams{
			Status:  GameAbandoned,
			EndedAt: sql.NullTime{Time: e.now(), Valid: true},
			ID:      gameID,
		})
		if err != nil {
			return fmt.Errorf("abandon game %s: %w", gameID, err)
		}
		return nil
	})
	if err != nil {
		return dbgen.Game{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "queue_engine").
		Str("session_id", sessionID).
		Str("game_id", gameID).
		Msg("Abandoned game")
	return game, nil
}

// Games lists a session's games in sequence order.
func (e *Engine) Games(ctx context.Context, sessionID string) ([]dbgen.Game, error) {
	games, err := e.db.Queries.ListSessionGames(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list games for %s: %w", sessionID, err)
	}
	return games, nil
}

func loadGame(ctx context.Context, queries *dbgen.Queries, sessionID, gameID string) (dbgen.Game, error) {
	game, err := queries.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return dbgen.Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return dbgen.Game{}, fmt.Errorf("load game %s: %w", gameID, err)
	}
	if game.SessionID != sessionID {
		return dbgen.Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}
