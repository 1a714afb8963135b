package httpapi

// styleCSS and chartsJS are the two static assets the fixed handler table
// serves. The original firmware reads these off the flash filesystem; this
// core embeds them as constants since there is no filesystem layer for a
// desktop or CI build to read from.
const styleCSS = `body { font-family: sans-serif; margin: 2rem; }
.modal.error { border: 1px solid #c0392b; padding: 1rem; }
`

const chartsJS = `// renders /bms/stats/data into the charts div; intentionally minimal.
fetch('/bms/stats/data').then(r => r.json()).then(data => {
  document.getElementById('charts').textContent = JSON.stringify(data.length) + ' windows';
});
`
