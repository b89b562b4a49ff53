package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"archive-sync/core/utils"
	"archive-sync/feature/character/models"
)

// SchaleDB fetches the flat per-student dump published by SchaleDB.
// Every attribute lives at the top level of the student object in PascalCase
// (ProfileAge, AttackPower1, StreetBattleAdaptation, ...).
type SchaleDB struct {
	client  *http.Client
	url     string
	cdnBase string
}

// NewSchaleDB creates the SchaleDB source.
func NewSchaleDB(url, cdnBase string) *SchaleDB {
	return &SchaleDB{
		client:  newHTTPClient(),
		url:     url,
		cdnBase: cdnBase,
	}
}

// SourceSchaleDB is the provenance tag for records mapped from SchaleDB.
const SourceSchaleDB = "schaledb"

func (s *SchaleDB) Name() string { return SourceSchaleDB }

// schaleStudent mirrors the raw student object. Adaptation grades arrive as
// numbers in some dumps and letters in others, so they decode as any.
type schaleStudent struct {
	ID              int    `json:"Id"`
	Name            string `json:"Name"`
	DevName         string `json:"DevName"`
	CharacterVoice  string `json:"CharacterVoice"`
	Illustrator     string `json:"Illustrator"`
	Designer        string `json:"Designer"`
	CollectionBG    string `json:"CollectionBG"`
	SchoolYear      string `json:"SchoolYear"`
	CharacterSSRNew string `json:"CharacterSSRNew"`
	IsLimited       bool   `json:"IsLimited"`

	School     string `json:"School"`
	Club       string `json:"Club"`
	StarGrade  int    `json:"StarGrade"`
	SquadType  string `json:"SquadType"`
	Position   string `json:"Position"`
	WeaponType string `json:"WeaponType"`
	ArmorType  string `json:"ArmorType"`
	BulletType string `json:"BulletType"`
	TacticRole string `json:"TacticRole"`

	ProfileAge      string `json:"ProfileAge"`
	ProfileBirthday string `json:"ProfileBirthday"`
	ProfileHeight   string `json:"ProfileHeight"`
	ProfileHobby    string `json:"ProfileHobby"`

	AttackPower1       int `json:"AttackPower1"`
	AttackPower100     int `json:"AttackPower100"`
	MaxHP1             int `json:"MaxHP1"`
	MaxHP100           int `json:"MaxHP100"`
	DefensePower1      int `json:"DefensePower1"`
	DefensePower100    int `json:"DefensePower100"`
	HealPower1         int `json:"HealPower1"`
	HealPower100       int `json:"HealPower100"`
	StabilityPoint     int `json:"StabilityPoint"`
	DodgePoint         int `json:"DodgePoint"`
	AccuracyPoint      int `json:"AccuracyPoint"`
	CriticalPoint      int `json:"CriticalPoint"`
	CriticalDamageRate int `json:"CriticalDamageRate"`

	StreetBattleAdaptation  any `json:"StreetBattleAdaptation"`
	OutdoorBattleAdaptation any `json:"OutdoorBattleAdaptation"`
	IndoorBattleAdaptation  any `json:"IndoorBattleAdaptation"`

	WeaponName string `json:"WeaponName"`
	WeaponDesc string `json:"WeaponDesc"`
	WeaponImg  string `json:"WeaponImg"`

	Skills    []schaleSkill `json:"Skills"`
	Equipment []string      `json:"Equipment"`
}

type schaleSkill struct {
	SkillType  string          `json:"SkillType"`
	Name       string          `json:"Name"`
	Desc       string          `json:"Desc"`
	Icon       string          `json:"Icon"`
	Parameters json.RawMessage `json:"Parameters"`
	Cost       json.RawMessage `json:"Cost"`
	Duration   json.RawMessage `json:"Duration"`
	Range      json.RawMessage `json:"Range"`
	Radius     json.RawMessage `json:"Radius"`
	Effects    json.RawMessage `json:"Effects"`
}

// FetchAll downloads the students dump and maps every usable student into a
// canonical record. Students without an id or name are skipped.
func (s *SchaleDB) FetchAll(ctx context.Context) ([]models.Character, error) {
	body, err := fetchJSON(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	var students []schaleStudent
	if err := json.Unmarshal(body, &students); err != nil {
		return nil, fmt.Errorf("parse schaledb students: %w", err)
	}

	chars := make([]models.Character, 0, len(students))
	for _, st := range students {
		if c, ok := s.mapStudent(st); ok {
			chars = append(chars, c)
		}
	}
	return chars, nil
}

func (s *SchaleDB) mapStudent(st schaleStudent) (models.Character, bool) {
	if st.ID == 0 || st.Name == "" {
		return models.Character{}, false
	}

	c := models.Character{
		ID:             st.ID,
		Name:           st.Name,
		DevName:        st.DevName,
		CharacterVoice: st.CharacterVoice,
		Illustrator:    st.Illustrator,
		Designer:       st.Designer,
		CollectionBG:   st.CollectionBG,
		SchoolYear:     st.SchoolYear,
		IsLimited:      st.IsLimited,
		Source:         SourceSchaleDB,

		SchoolName:  st.School,
		ClubName:    st.Club,
		RarityStars: st.StarGrade,
		SquadType:   st.SquadType,
		Position:    st.Position,
		WeaponType:  st.WeaponType,
		ArmorType:   st.ArmorType,
		BulletType:  st.BulletType,
		TacticRole:  st.TacticRole,

		Profile: models.Profile{
			Age:         st.ProfileAge,
			Birthday:    st.ProfileBirthday,
			Height:      st.ProfileHeight,
			Hobby:       st.ProfileHobby,
			Designer:    st.Designer,
			Illustrator: st.Illustrator,
			CV:          st.CharacterVoice,
			SSRQuote:    st.CharacterSSRNew,
		},
		Stats: models.Stats{
			AttackPower1:    st.AttackPower1,
			AttackPower100:  st.AttackPower100,
			MaxHP1:          st.MaxHP1,
			MaxHP100:        st.MaxHP100,
			DefensePower1:   st.DefensePower1,
			DefensePower100: st.DefensePower100,
			HealPower1:      st.HealPower1,
			HealPower100:    st.HealPower100,
			StabilityPoint:  st.StabilityPoint,
			DodgePoint:      st.DodgePoint,
			AccuracyPoint:   st.AccuracyPoint,
			CriticalPoint:   st.CriticalPoint,
			CriticalDamage:  st.CriticalDamageRate,
		},
		Terrain: models.Terrain{
			Street:  utils.ToString(st.StreetBattleAdaptation),
			Outdoor: utils.ToString(st.OutdoorBattleAdaptation),
			Indoor:  utils.ToString(st.IndoorBattleAdaptation),
		},
		Weapon: models.Weapon{
			Name:  st.WeaponName,
			Desc:  st.WeaponDesc,
			Image: st.WeaponImg,
		},
		Equipment: st.Equipment,
		Images:    models.DeriveImages(s.cdnBase, st.ID),
	}

	for _, sk := range st.Skills {
		if sk.Name == "" && sk.SkillType == "" {
			continue
		}
		c.Skills = append(c.Skills, models.Skill{
			SkillType:  sk.SkillType,
			Name:       sk.Name,
			Desc:       sk.Desc,
			Icon:       sk.Icon,
			Parameters: sk.Parameters,
			Cost:       sk.Cost,
			Duration:   sk.Duration,
			Range:      sk.Range,
			Radius:     sk.Radius,
			Effects:    sk.Effects,
		})
	}

	return c, true
}
