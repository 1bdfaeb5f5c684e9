package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "title").
		From("matches").
		Where(Eq("user_id", "user-1"), IsNull("deleted_at")).
		OrderBy("created_at DESC").
		Limit(10).
		Offset(20).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, title FROM matches WHERE user_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC LIMIT 10 OFFSET 20"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "user-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("matches").
		Columns("id", "title").
		Values("match-1", "semis").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO matches (id, title) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "match-1" || args[1] != "semis" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("matches").
		Set("status", "analyzed").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "match-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE matches SET status = $1, updated_at = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "analyzed" || args[1] != "match-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInCondition_EmptyValuesNeverMatch(t *testing.T) {
	query, args, err := Select("id").From("analysis_jobs").
		Where(In("status", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT id FROM analysis_jobs WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateModel(t *testing.T) {
	type row struct {
		Status   string `db:"status"`
		Attempts int    `db:"attempts"`
		note     string
	}

	query, args, err := UpdateModel("analysis_jobs", row{Status: "running", Attempts: 3}, Eq("id", "job-1"))
	if err != nil {
		t.Fatalf("build update model query: %v", err)
	}

	wantQuery := "UPDATE analysis_jobs SET status = $1, attempts = $2 WHERE id = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "running" || args[1] != 3 || args[2] != "job-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
