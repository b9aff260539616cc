package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"webhook_feed/internal/model"
	"webhook_feed/migrations"
)

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises
	// writers with the read session.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// BeginRead opens a transaction that all change-feed queries run in.
func (s *SQLite) BeginRead(ctx context.Context) (Reader, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}
	return &sqliteReader{tx: tx}, nil
}

// SaveGym inserts or replaces a gym.
func (s *SQLite) SaveGym(ctx context.Context, g model.GymRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO gym (gym_id, team_id, latitude, longitude, name, description, url,
		   slots_available, is_ar_scan_eligible, is_in_battle, is_ex_raid_eligible, last_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.GymID, g.TeamID, g.Latitude, g.Longitude, g.Name, g.Description, g.URL,
		g.SlotsAvailable, boolToInt(g.IsARScanEligible), boolToInt(g.IsInBattle), g.IsExRaidEligible,
		g.LastModified,
	)
	if err != nil {
		return fmt.Errorf("save gym: %w", err)
	}
	return nil
}

// SaveRaid inserts or replaces the raid of a gym. Gym details and the weather
// boost are read from the gym row.
func (s *SQLite) SaveRaid(ctx context.Context, r model.RaidRow) error {
	if r.GymID == nil {
		return errors.New("save raid: missing gym id")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO raid (gym_id, level, raid_spawn, raid_start, raid_end, pokemon_id, cp,
		   move_1, move_2, form, costume, gender, evolution, is_exclusive, last_scanned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		*r.GymID, r.Level, r.Spawn, r.Start, r.End, r.PokemonID, r.CP,
		r.Move1, r.Move2, r.Form, r.Costume, r.Gender, r.Evolution, r.IsExclusive, r.LastScanned,
	); err != nil {
		return fmt.Errorf("save raid: %w", err)
	}
	if r.WeatherBoostedCondition != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE gym SET weather_boosted_condition = ? WHERE gym_id = ?`,
			*r.WeatherBoostedCondition, *r.GymID,
		); err != nil {
			return fmt.Errorf("update gym weather: %w", err)
		}
	}
	return tx.Commit()
}

// SavePokestop inserts or replaces a pokestop together with its incidents.
func (s *SQLite) SavePokestop(ctx context.Context, p model.PokestopRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO pokestop (pokestop_id, name, image, latitude, longitude,
		   active_fort_modifier, lure_expiration, incident_start, incident_expiration,
		   incident_grunt_type, incident_display_type, last_modified, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.PokestopID, p.Name, p.Image, p.Latitude, p.Longitude,
		p.ActiveFortModifier, p.LureExpiration, p.IncidentStart, p.IncidentExpiration,
		p.IncidentGruntType, p.IncidentDisplayType, p.LastModified, p.LastUpdated,
	); err != nil {
		return fmt.Errorf("save pokestop: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pokestop_incident WHERE pokestop_id = ?`, p.PokestopID); err != nil {
		return fmt.Errorf("delete incidents: %w", err)
	}
	for _, inc := range p.Incidents {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO pokestop_incident (incident_id, pokestop_id, incident_start,
			   incident_expiration, incident_display_type, character_display, updated)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			inc.IncidentID, p.PokestopID, inc.Start, inc.Expiration, inc.DisplayType, inc.Character, p.LastUpdated,
		); err != nil {
			return fmt.Errorf("save incident %s: %w", inc.IncidentID, err)
		}
	}
	return tx.Commit()
}

// SaveQuest inserts or replaces the quest of one layer of a stop.
func (s *SQLite) SaveQuest(ctx context.Context, stopID string, q model.Quest) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO quest (pokestop_id, layer, quest_type, quest_timestamp, quest_stardust,
		   quest_pokemon_id, quest_pokemon_form_id, quest_pokemon_costume_id, quest_reward_type,
		   quest_item_id, quest_item_amount, quest_target, quest_condition, quest_reward,
		   quest_task, quest_template, quest_title)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stopID, q.Layer, q.QuestType, q.Timestamp, q.Stardust,
		q.PokemonID, q.PokemonForm, q.PokemonCostume, q.RewardType,
		q.ItemID, q.ItemAmount, q.Target, q.QuestCondition, q.QuestReward,
		q.QuestTask, q.QuestTemplate, q.QuestTitle,
	); err != nil {
		return fmt.Errorf("save quest: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE pokestop SET is_ar_scan_eligible = ? WHERE pokestop_id = ?`,
		boolToInt(q.IsARScanEligible), stopID,
	); err != nil {
		return fmt.Errorf("update pokestop ar eligibility: %w", err)
	}
	return tx.Commit()
}

// SaveWeather inserts or replaces the weather of a cell.
func (s *SQLite) SaveWeather(ctx context.Context, w model.WeatherRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO weather (s2_cell_id, latitude, longitude, gameplay_weather,
		   severity, world_time, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.S2CellID, w.Latitude, w.Longitude, w.GameplayWeather, w.Severity, w.WorldTime, w.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("save weather: %w", err)
	}
	return nil
}

// SavePokemon inserts or replaces a pokemon sighting.
func (s *SQLite) SavePokemon(ctx context.Context, p model.PokemonRow) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO pokemon (encounter_id, pokemon_id, display_pokemon, spawnpoint_id,
		   latitude, longitude, disappear_time, spawn_verified, seen_type, cp_multiplier,
		   form, display_form, costume, display_costume, cp,
		   individual_attack, individual_defense, individual_stamina, move_1, move_2,
		   height, weight, gender, display_gender, size,
		   catch_prob_1, catch_prob_2, catch_prob_3, weather_boosted_condition,
		   fort_id, cell_id, last_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(p.EncounterID), p.PokemonID, p.DisplayPokemon, p.SpawnpointID,
		p.Latitude, p.Longitude, p.DisappearTime, boolToInt(p.SpawnVerified), string(p.SeenType), p.CPMultiplier,
		p.Form, p.DisplayForm, p.Costume, p.DisplayCostume, p.CP,
		p.IndividualAttack, p.IndividualDefense, p.IndividualStamina, p.Move1, p.Move2,
		p.Height, p.Weight, p.Gender, p.DisplayGender, p.Size,
		p.BaseCatch, p.GreatCatch, p.UltraCatch, p.WeatherBoostedCondition,
		p.FortID, p.CellID, p.LastModified,
	)
	if err != nil {
		return fmt.Errorf("save pokemon: %w", err)
	}
	return nil
}

// SpawnCountsSince counts sightings per species that disappear after since.
func (s *SQLite) SpawnCountsSince(ctx context.Context, since int64) (map[int]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pokemon_id, COUNT(*) FROM pokemon WHERE disappear_time > ? GROUP BY pokemon_id`, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query spawn counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[int]int)
	for rows.Next() {
		var id, n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan spawn count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

type sqliteReader struct {
	tx *sql.Tx
}

// Close ends the read session.
func (r *sqliteReader) Close() error {
	if err := r.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("end read: %w", err)
	}
	return nil
}

func (r *sqliteReader) RaidsChangedSince(ctx context.Context, since int64) ([]model.RaidRow, error) {
	return queryRows(ctx, r.tx, scanRaid,
		`SELECT r.gym_id, r.level, r.raid_spawn, r.raid_start, r.raid_end, r.pokemon_id, r.cp,
		        r.move_1, r.move_2, r.form, r.costume, r.gender, r.evolution,
		        g.name, g.url, g.latitude, g.longitude, g.team_id, g.weather_boosted_condition,
		        r.is_exclusive, g.is_ex_raid_eligible, r.last_scanned
		 FROM raid r JOIN gym g ON g.gym_id = r.gym_id
		 WHERE r.last_scanned > ?
		 ORDER BY r.last_scanned, r.gym_id`, since)
}

func (r *sqliteReader) QuestsChangedSince(ctx context.Context, since int64) ([]model.QuestRow, error) {
	return queryRows(ctx, r.tx, scanQuest,
		`SELECT s.pokestop_id, s.name, s.image, s.latitude, s.longitude, s.is_ar_scan_eligible,
		        q.layer, q.quest_type, q.quest_timestamp, q.quest_stardust, q.quest_pokemon_id,
		        q.quest_pokemon_form_id, q.quest_pokemon_costume_id, q.quest_reward_type,
		        q.quest_item_id, q.quest_item_amount, q.quest_target, q.quest_condition,
		        q.quest_reward, q.quest_task, q.quest_template, q.quest_title
		 FROM quest q JOIN pokestop s ON s.pokestop_id = q.pokestop_id
		 WHERE q.quest_timestamp > ?
		 ORDER BY q.pokestop_id, q.layer`, since)
}

func (r *sqliteReader) WeatherChangedSince(ctx context.Context, since int64) ([]model.WeatherRow, error) {
	return queryRows(ctx, r.tx, scanWeather,
		`SELECT s2_cell_id, latitude, longitude, gameplay_weather, severity, world_time, last_updated
		 FROM weather
		 WHERE last_updated > ?
		 ORDER BY s2_cell_id`, since)
}

func (r *sqliteReader) GymsChangedSince(ctx context.Context, since int64) ([]model.GymRow, error) {
	return queryRows(ctx, r.tx, scanGym,
		`SELECT gym_id, latitude, longitude, team_id, name, description, url, slots_available,
		        is_ar_scan_eligible, is_in_battle, is_ex_raid_eligible, last_modified
		 FROM gym
		 WHERE last_modified > ?
		 ORDER BY last_modified, gym_id`, since)
}

func (r *sqliteReader) PokestopsChangedSince(ctx context.Context, since int64) ([]model.PokestopRow, error) {
	stops, err := queryRows(ctx, r.tx, scanPokestop,
		`SELECT pokestop_id, name, image, latitude, longitude, last_updated, last_modified,
		        active_fort_modifier, lure_expiration, incident_start, incident_expiration,
		        incident_grunt_type, incident_display_type
		 FROM pokestop
		 WHERE last_updated > ?
		 ORDER BY last_updated, pokestop_id`, since)
	if err != nil || len(stops) == 0 {
		return stops, err
	}

	incidents, err := queryRows(ctx, r.tx, scanIncident,
		`SELECT i.pokestop_id, i.incident_id, i.incident_start, i.incident_expiration,
		        i.incident_display_type, i.character_display
		 FROM pokestop_incident i JOIN pokestop s ON s.pokestop_id = i.pokestop_id
		 WHERE s.last_updated > ?
		 ORDER BY i.pokestop_id, i.incident_start, i.incident_id`, since)
	if err != nil {
		return nil, err
	}

	byStop := make(map[string][]model.Incident)
	for _, inc := range incidents {
		byStop[inc.stopID] = append(byStop[inc.stopID], inc.Incident)
	}
	for i := range stops {
		stops[i].Incidents = byStop[stops[i].PokestopID]
	}
	return stops, nil
}

func (r *sqliteReader) PokemonChangedSince(ctx context.Context, since int64, seenTypes []model.SeenType) ([]model.PokemonRow, error) {
	if len(seenTypes) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(seenTypes)+1)
	args = append(args, since)
	for _, st := range seenTypes {
		args = append(args, string(st))
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(seenTypes)), ", ")

	return queryRows(ctx, r.tx, scanPokemon,
		`SELECT p.encounter_id, p.pokemon_id, p.display_pokemon, p.spawnpoint_id, p.latitude, p.longitude,
		        p.disappear_time, p.spawn_verified, p.seen_type, p.cp_multiplier,
		        p.form, p.display_form, p.costume, p.display_costume, p.cp,
		        p.individual_attack, p.individual_defense, p.individual_stamina, p.move_1, p.move_2,
		        p.height, p.weight, p.gender, p.display_gender, p.size,
		        p.catch_prob_1, p.catch_prob_2, p.catch_prob_3, p.weather_boosted_condition,
		        p.fort_id, s.name, s.image, p.cell_id, p.last_modified
		 FROM pokemon p LEFT JOIN pokestop s ON s.pokestop_id = p.fort_id
		 WHERE p.last_modified > ? AND p.seen_type IN (`+placeholders+`)
		 ORDER BY p.last_modified, p.encounter_id`, args...)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func queryRows[T any](ctx context.Context, tx *sql.Tx, scan func(scannable) (T, error), query string, args ...any) ([]T, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanRaid(row scannable) (model.RaidRow, error) {
	var r model.RaidRow
	err := row.Scan(&r.GymID, &r.Level, &r.Spawn, &r.Start, &r.End, &r.PokemonID, &r.CP,
		&r.Move1, &r.Move2, &r.Form, &r.Costume, &r.Gender, &r.Evolution,
		&r.Name, &r.URL, &r.Latitude, &r.Longitude, &r.TeamID, &r.WeatherBoostedCondition,
		&r.IsExclusive, &r.IsExRaidEligible, &r.LastScanned)
	if err != nil {
		return r, fmt.Errorf("scan raid: %w", err)
	}
	return r, nil
}

func scanQuest(row scannable) (model.QuestRow, error) {
	var q model.QuestRow
	var arEligible int
	err := row.Scan(&q.Stop.ID, &q.Stop.Name, &q.Stop.Image, &q.Stop.Latitude, &q.Stop.Longitude, &arEligible,
		&q.Quest.Layer, &q.Quest.QuestType, &q.Quest.Timestamp, &q.Quest.Stardust, &q.Quest.PokemonID,
		&q.Quest.PokemonForm, &q.Quest.PokemonCostume, &q.Quest.RewardType,
		&q.Quest.ItemID, &q.Quest.ItemAmount, &q.Quest.Target, &q.Quest.QuestCondition,
		&q.Quest.QuestReward, &q.Quest.QuestTask, &q.Quest.QuestTemplate, &q.Quest.QuestTitle)
	if err != nil {
		return q, fmt.Errorf("scan quest: %w", err)
	}
	q.Quest.IsARScanEligible = arEligible == 1
	return q, nil
}

func scanWeather(row scannable) (model.WeatherRow, error) {
	var w model.WeatherRow
	err := row.Scan(&w.S2CellID, &w.Latitude, &w.Longitude, &w.GameplayWeather, &w.Severity, &w.WorldTime, &w.LastUpdated)
	if err != nil {
		return w, fmt.Errorf("scan weather: %w", err)
	}
	return w, nil
}

func scanGym(row scannable) (model.GymRow, error) {
	var g model.GymRow
	var arEligible, inBattle int
	var exEligible sql.NullInt64
	err := row.Scan(&g.GymID, &g.Latitude, &g.Longitude, &g.TeamID, &g.Name, &g.Description, &g.URL,
		&g.SlotsAvailable, &arEligible, &inBattle, &exEligible, &g.LastModified)
	if err != nil {
		return g, fmt.Errorf("scan gym: %w", err)
	}
	g.IsARScanEligible = arEligible == 1
	g.IsInBattle = inBattle == 1
	if exEligible.Valid {
		v := exEligible.Int64 != 0
		g.IsExRaidEligible = &v
	}
	return g, nil
}

func scanPokestop(row scannable) (model.PokestopRow, error) {
	var p model.PokestopRow
	err := row.Scan(&p.PokestopID, &p.Name, &p.Image, &p.Latitude, &p.Longitude, &p.LastUpdated, &p.LastModified,
		&p.ActiveFortModifier, &p.LureExpiration, &p.IncidentStart, &p.IncidentExpiration,
		&p.IncidentGruntType, &p.IncidentDisplayType)
	if err != nil {
		return p, fmt.Errorf("scan pokestop: %w", err)
	}
	return p, nil
}

type stopIncident struct {
	model.Incident
	stopID string
}

func scanIncident(row scannable) (stopIncident, error) {
	var i stopIncident
	err := row.Scan(&i.stopID, &i.IncidentID, &i.Start, &i.Expiration, &i.DisplayType, &i.Character)
	if err != nil {
		return i, fmt.Errorf("scan incident: %w", err)
	}
	return i, nil
}

func scanPokemon(row scannable) (model.PokemonRow, error) {
	var p model.PokemonRow
	var encounterID int64
	var verified int
	var seenType string
	err := row.Scan(&encounterID, &p.PokemonID, &p.DisplayPokemon, &p.SpawnpointID, &p.Latitude, &p.Longitude,
		&p.DisappearTime, &verified, &seenType, &p.CPMultiplier,
		&p.Form, &p.DisplayForm, &p.Costume, &p.DisplayCostume, &p.CP,
		&p.IndividualAttack, &p.IndividualDefense, &p.IndividualStamina, &p.Move1, &p.Move2,
		&p.Height, &p.Weight, &p.Gender, &p.DisplayGender, &p.Size,
		&p.BaseCatch, &p.GreatCatch, &p.UltraCatch, &p.WeatherBoostedCondition,
		&p.FortID, &p.StopName, &p.StopURL, &p.CellID, &p.LastModified)
	if err != nil {
		return p, fmt.Errorf("scan pokemon: %w", err)
	}
	p.EncounterID = uint64(encounterID)
	p.SpawnVerified = verified == 1
	p.SeenType = model.SeenType(seenType)
	return p, nil
}
