package browser

import "fmt"

// optionPresentJS is truthy once the <select> with id is rendered and offers
// an option whose visible text equals label.
func optionPresentJS(id, label string) string {
	return fmt.Sprintf(`(() => {
	const el = document.getElementById(%q);
	if (!el || !(el.offsetWidth || el.offsetHeight || el.getClientRects().length)) return false;
	return Array.from(el.options).some(o => o.text === %q);
})()`, id, label)
}

// selectOptionJS selects the option with visible text label and fires the
// change event the page listens on to repopulate dependent dropdowns.
func selectOptionJS(id, label string) string {
	return fmt.Sprintf(`(() => {
	const el = document.getElementById(%q);
	if (!el) return false;
	const opt = Array.from(el.options).find(o => o.text === %q);
	if (!opt) return false;
	el.value = opt.value;
	opt.selected = true;
	el.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
})()`, id, label)
}

// clickFirstJS clicks the first node xpath matches in the live document
// and reports its text and href.
func clickFirstJS(xpath string) string {
	return fmt.Sprintf(`(() => {
	const r = document.evaluate(%q, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const a = r.snapshotItem(0);
	if (!a) return { found: false, text: '', href: '' };
	a.click();
	return { found: true, text: (a.textContent || '').trim(), href: a.getAttribute('href') || '' };
})()`, xpath)
}
