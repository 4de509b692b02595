package db

// SchemaSQL contains the database schema initialization SQL.
// Annotations and clusterings keep nested span/point objects, so those
// tables are schemaless with typed top-level fields.
const SchemaSQL = `
    -- ==========================================================================
    -- RECIPE TABLE
    -- ==========================================================================
    -- Record id is the origin id: recipe:⟨origin_id⟩
    DEFINE TABLE IF NOT EXISTS recipe SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS origin_id ON recipe TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON recipe TYPE string;
    DEFINE FIELD IF NOT EXISTS group_name ON recipe TYPE string;
    DEFINE FIELD IF NOT EXISTS ingredients ON recipe TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS instruction ON recipe TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS created ON recipe TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS recipe_origin ON recipe FIELDS origin_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS recipe_group ON recipe FIELDS group_name;

    -- ==========================================================================
    -- ANNOTATION TABLE (one per recipe)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS annotation SCHEMALESS;
    DEFINE FIELD IF NOT EXISTS origin_id ON annotation TYPE string;
    DEFINE FIELD IF NOT EXISTS recipe ON annotation TYPE record<recipe>;
    DEFINE FIELD IF NOT EXISTS actions ON annotation TYPE array DEFAULT [];
    DEFINE FIELD IF NOT EXISTS ingredients ON annotation TYPE array DEFAULT [];
    DEFINE FIELD IF NOT EXISTS links ON annotation TYPE array DEFAULT [];
    DEFINE FIELD IF NOT EXISTS coreferences ON annotation TYPE array DEFAULT [];

    DEFINE INDEX IF NOT EXISTS annotation_origin ON annotation FIELDS origin_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS annotation_recipe ON annotation FIELDS recipe;

    -- ==========================================================================
    -- CLUSTERING TABLE
    -- ==========================================================================
    -- One record per (dish_name, title) clustering run. created orders runs
    -- whose titles match the same filter.
    DEFINE TABLE IF NOT EXISTS clustering SCHEMALESS;
    DEFINE FIELD IF NOT EXISTS dish_name ON clustering TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON clustering TYPE string;
    DEFINE FIELD IF NOT EXISTS points ON clustering TYPE array DEFAULT [];
    DEFINE FIELD IF NOT EXISTS created ON clustering TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS clustering_dish ON clustering FIELDS dish_name;
    DEFINE INDEX IF NOT EXISTS clustering_run ON clustering FIELDS dish_name, title UNIQUE;

    -- ==========================================================================
    -- IMPORT_JOB TABLE
    -- ==========================================================================
    -- Record id is the short job id: import_job:⟨job_id⟩
    DEFINE TABLE IF NOT EXISTS import_job SCHEMALESS;
    DEFINE FIELD IF NOT EXISTS job_id ON import_job TYPE string;
    DEFINE FIELD IF NOT EXISTS job_type ON import_job TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON import_job TYPE string DEFAULT "";
    DEFINE FIELD IF NOT EXISTS status ON import_job TYPE string
        ASSERT $value IN ["pending", "running", "completed", "failed"];
    DEFINE FIELD IF NOT EXISTS dir_path ON import_job TYPE string;
    DEFINE FIELD IF NOT EXISTS files ON import_job TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS recursive ON import_job TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS dry_run ON import_job TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS total ON import_job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS progress ON import_job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS started_at ON import_job TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS completed_at ON import_job TYPE option<datetime>;

    DEFINE INDEX IF NOT EXISTS import_job_status ON import_job FIELDS status;
`
