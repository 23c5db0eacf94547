// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

package distribute

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping(t *testing.T) *Mapping {
	t.Helper()
	m, err := NewMapping([]Entry{
		{Table: "item", Catalog: "ds1", Schema: "public"},
		{Table: "date_dim", Catalog: "ds2", Schema: "public"},
		{Table: "store", Catalog: "ds2", Schema: "public"},
		{Table: "store_sales", Catalog: "ds3", Schema: "public"},
		{Table: "store_returns", Catalog: "ds3", Schema: "public"},
		{Table: "catalog_sales", Catalog: "ds1", Schema: "public"},
		{Table: "web_sales", Catalog: "ds1", Schema: "public"},
		{Table: "web_page", Catalog: "ds2", Schema: "public"},
	}, PolicyError)
	require.NoError(t, err)
	return m
}

func TestDistributeSimpleFromList(t *testing.T) {
	m := testMapping(t)
	in := "SELECT * FROM item, date_dim WHERE d_date = '2000-01-01'"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ds1.public.item, ds2.public.date_dim WHERE d_date = '2000-01-01'", res.Text)
	require.Len(t, res.Rewrites, 2)
	assert.Equal(t, "item", res.Rewrites[0].Table)
	assert.Equal(t, "ds1.public.item", res.Rewrites[0].Qualified)
	assert.Equal(t, "date_dim", res.Rewrites[1].Table)
}

func TestDistributeIdempotent(t *testing.T) {
	m := testMapping(t)
	queries := []string{
		"SELECT * FROM item, date_dim WHERE d_date = '2000-01-01'",
		"select i_item_id from item join store_sales on ss_item_sk = i_item_sk",
		"with ss as (select ss_store_sk from store_sales) select * from ss, store",
	}
	for _, q := range queries {
		first, err := Distribute(q, m)
		require.NoError(t, err)
		second, err := Distribute(first.Text, m)
		require.NoError(t, err)
		assert.Equal(t, first.Text, second.Text, "query %q drifted on second pass", q)
		assert.Empty(t, second.Rewrites)
	}
}

func TestDistributePreservesAliases(t *testing.T) {
	m := testMapping(t)
	in := "select cs1.cs_order_number from catalog_sales cs1 join catalog_sales cs2 on cs1.cs_order_number = cs2.cs_order_number"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t,
		"select cs1.cs_order_number from ds1.public.catalog_sales cs1 join ds1.public.catalog_sales cs2 on cs1.cs_order_number = cs2.cs_order_number",
		res.Text)
}

func TestDistributeAssignsDeterministicAlias(t *testing.T) {
	m := testMapping(t)
	in := "select i1.i_item_sk from item i1, item"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t, "select i1.i_item_sk from ds1.public.item i1, ds1.public.item item", res.Text)
	require.Len(t, res.Rewrites, 2)
	assert.Empty(t, res.Rewrites[0].AddedAlias)
	assert.Equal(t, "item", res.Rewrites[1].AddedAlias)
}

func TestDistributeNoAliasAcrossScopes(t *testing.T) {
	m := testMapping(t)
	// The same table in sibling subqueries is not ambiguous; no alias is
	// invented for either occurrence.
	in := "select * from store where s_store_sk in (select ss_store_sk from store_sales) and exists (select 1 from store_sales)"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t,
		"select * from ds2.public.store where s_store_sk in (select ss_store_sk from ds3.public.store_sales) and exists (select 1 from ds3.public.store_sales)",
		res.Text)
}

func TestDistributeNestedSubqueries(t *testing.T) {
	m := testMapping(t)
	in := "select * from item where i_item_sk in (select ss_item_sk from store_sales where ss_item_sk in (select sr_item_sk from store_returns)) and i_current_price > (select avg(i_current_price) from item)"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t,
		"select * from ds1.public.item where i_item_sk in (select ss_item_sk from ds3.public.store_sales where ss_item_sk in (select sr_item_sk from ds3.public.store_returns)) and i_current_price > (select avg(i_current_price) from ds1.public.item)",
		res.Text)
	assert.Len(t, res.Rewrites, 4)
}

func TestDistributeCTE(t *testing.T) {
	m := testMapping(t)
	in := "with wscs as (select ws_sold_date_sk from web_sales) select * from wscs, item"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	// The CTE body is rewritten; the CTE's use in FROM is not.
	assert.Equal(t, "with wscs as (select ws_sold_date_sk from ds1.public.web_sales) select * from wscs, ds1.public.item", res.Text)
}

func TestDistributeMultipleCTEs(t *testing.T) {
	m := testMapping(t)
	in := "with a as (select ss_sold_date_sk d from store_sales), b (d) as (select sr_returned_date_sk from store_returns) select * from a, b, date_dim"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t,
		"with a as (select ss_sold_date_sk d from ds3.public.store_sales), b (d) as (select sr_returned_date_sk from ds3.public.store_returns) select * from a, b, ds2.public.date_dim",
		res.Text)
}

func TestDistributeCorrelatedExists(t *testing.T) {
	m := testMapping(t)
	in := "select s_store_name from store s where exists (select 1 from store_returns sr where sr.sr_store_sk = s.s_store_sk)"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t,
		"select s_store_name from ds2.public.store s where exists (select 1 from ds3.public.store_returns sr where sr.sr_store_sk = s.s_store_sk)",
		res.Text)
}

func TestDistributeIgnoresFunctionFrom(t *testing.T) {
	m := testMapping(t)
	// FROM inside extract() is part of the function call, not a table clause.
	in := "select extract(year from d_date) from date_dim"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t, "select extract(year from d_date) from ds2.public.date_dim", res.Text)
	assert.Len(t, res.Rewrites, 1)
}

func TestDistributeWindowFunctions(t *testing.T) {
	m := testMapping(t)
	in := "select rank() over (partition by i_category order by i_current_price desc) rnk from item"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t, "select rank() over (partition by i_category order by i_current_price desc) rnk from ds1.public.item", res.Text)
}

func TestDistributeSetOperations(t *testing.T) {
	m := testMapping(t)
	in := "select i_item_sk from item union all select wp_web_page_sk from web_page"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t, "select i_item_sk from ds1.public.item union all select wp_web_page_sk from ds2.public.web_page", res.Text)
}

func TestDistributeQuotedTableName(t *testing.T) {
	m := testMapping(t)
	res, err := Distribute(`select * from "item"`, m)
	require.NoError(t, err)
	assert.Equal(t, `select * from ds1.public."item"`, res.Text)
}

func TestDistributePreservesFormatting(t *testing.T) {
	m := testMapping(t)
	in := "select  i_item_id ,\n       sum( ss_ext_sales_price ) AS total\nfrom store_sales\n    join item on ss_item_sk = i_item_sk\ngroup by i_item_id\norder by total desc"
	res, err := Distribute(in, m)
	require.NoError(t, err)
	assert.Equal(t,
		"select  i_item_id ,\n       sum( ss_ext_sales_price ) AS total\nfrom ds3.public.store_sales\n    join ds1.public.item on ss_item_sk = i_item_sk\ngroup by i_item_id\norder by total desc",
		res.Text)
}

func TestDistributeSkipsQualifiedMixed(t *testing.T) {
	m := testMapping(t)
	res, err := Distribute("select * from ds1.public.item, date_dim", m)
	require.NoError(t, err)
	assert.Equal(t, "select * from ds1.public.item, ds2.public.date_dim", res.Text)
	assert.Len(t, res.Rewrites, 1)
}

func TestDistributeUnresolvedTable(t *testing.T) {
	m := testMapping(t)
	_, err := Distribute("select * from item, warehouse", m)
	var ute *UnresolvedTableError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, "warehouse", ute.Table)
}

func TestDistributeKeepPolicy(t *testing.T) {
	m, err := NewMapping([]Entry{{Table: "item", Catalog: "ds1", Schema: "public"}}, PolicyKeep)
	require.NoError(t, err)
	res, err := Distribute("select * from item, warehouse", m)
	require.NoError(t, err)
	assert.Equal(t, "select * from ds1.public.item, warehouse", res.Text)
}

func TestDistributeCatalogOnlyQualifier(t *testing.T) {
	m, err := NewMapping([]Entry{{Table: "item", Catalog: "hive"}}, PolicyError)
	require.NoError(t, err)
	res, err := Distribute("select * from item", m)
	require.NoError(t, err)
	assert.Equal(t, "select * from hive.item", res.Text)
}

func TestDistributeParseErrors(t *testing.T) {
	m := testMapping(t)
	tests := []struct {
		name  string
		query string
	}{
		{"unterminated string", "select * from item where i_color = 'red"},
		{"unterminated block comment", "select * from item /* oops"},
		{"unbalanced open paren", "select * from (select * from item"},
		{"unbalanced close paren", "select * from item)"},
		{"empty statement", "   \n\t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Distribute(tt.query, m)
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "expected ParseError, got %v", err)
		})
	}
}

func TestDistributeCaseInsensitiveLookup(t *testing.T) {
	m := testMapping(t)
	res, err := Distribute("SELECT * FROM ITEM", m)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM ds1.public.ITEM", res.Text)
}
